package api

import (
	"context"
	"errors"
	"fmt"
	"movie_api/api/middleware"
	"movie_api/configs"
	"movie_api/db/redis"
	"movie_api/internal/handler"
	"movie_api/pkg/response"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
)

var router *fiber.App

func InitRouter(userHandler *handler.UserHandler, movieHandler *handler.MovieHandler) {
	var defaultErrorHandler = func(c *fiber.Ctx, err error) error {
		// Status code defaults to 500
		code := fiber.StatusInternalServerError

		// Retrieve the custom status code if it's a *fiber.Error
		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}

		if !strings.Contains(err.Error(), "/favicon.ico") && code >= 500 {
			fmt.Println(err.Error())
		}

		return response.ResponseError(c, code, response.CodeInternalError, response.ServerError, nil)
	}

	router = fiber.New(fiber.Config{
		UnescapePath: true,
		ErrorHandler: defaultErrorHandler,
	})

	router.Use(helmet.New())
	router.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return middleware.LocalhostRegex.MatchString(origin) ||
				slices.Index(configs.GetConfigs().CorsAllowedOrigins, origin) != -1
		},
		AllowCredentials: true,
	}))
	router.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return uuid.NewString()
		},
	}))
	router.Use(timeoutMiddleware(time.Second * 10))
	router.Use(recover.New())
	router.Use(compress.New())

	router.Use(fibersentry.New(fibersentry.Config{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	router.Use(middleware.NewRateLimiter(redis.NewLimiterStorage()))

	authRoutes := router.Group("v1/auth")
	{
		authRoutes.Post("/register", userHandler.Register)
		authRoutes.Post("/login", userHandler.Login)
		authRoutes.Post("/refresh", userHandler.RefreshToken)
		authRoutes.Post("/logout", middleware.AuthMiddleware, userHandler.Logout)
		authRoutes.Get("/me", middleware.AuthMiddleware, userHandler.GetProfile)
	}

	movieRoutes := router.Group("v1/movies")
	{
		movieRoutes.Get("/", middleware.OptionalAuthMiddleware, movieHandler.GetMovies)
		movieRoutes.Get("/trending", middleware.OptionalAuthMiddleware, movieHandler.GetTrending)
		movieRoutes.Get("/popular", middleware.OptionalAuthMiddleware, movieHandler.GetPopular)
		movieRoutes.Get("/top_rated", middleware.OptionalAuthMiddleware, movieHandler.GetTopRated)
		movieRoutes.Get("/upcoming", middleware.OptionalAuthMiddleware, movieHandler.GetUpcoming)
		movieRoutes.Get("/search", middleware.OptionalAuthMiddleware, movieHandler.Search)
		movieRoutes.Get("/recommendations", middleware.AuthMiddleware, movieHandler.GetRecommendations)
		movieRoutes.Get("/:tmdbId", middleware.OptionalAuthMiddleware, movieHandler.GetMovieDetail)
		movieRoutes.Get("/:tmdbId/similar", middleware.OptionalAuthMiddleware, movieHandler.GetSimilar)
		movieRoutes.Post("/:tmdbId/favorite", middleware.AuthMiddleware, movieHandler.AddFavorite)
		movieRoutes.Delete("/:tmdbId/favorite", middleware.AuthMiddleware, movieHandler.RemoveFavorite)
	}

	favoriteRoutes := router.Group("v1/favorites")
	{
		favoriteRoutes.Get("/", middleware.AuthMiddleware, movieHandler.GetFavorites)
	}

	router.Get("/", HealthCheck)
	router.Get("/metrics", monitor.New())

	router.Get("/swagger/*", swagger.HandlerDefault) // default
}

func Start(addr string) error {
	return router.Listen(addr)
}

func timeoutMiddleware(timeout time.Duration) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {

		// wrap the request context with a timeout
		ctx, cancel := context.WithTimeout(c.Context(), timeout)

		defer func() {
			// check if context timeout was reached
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {

				// write response and abort the request
				c.SendStatus(fiber.StatusGatewayTimeout)
			}

			//cancel to clear resources after finished
			cancel()
		}()

		return c.Next()
	}
}

// HealthCheck godoc
//
//	@Summary		Show the status of server.
//	@Description	get the status of server.
//	@Tags			System
//	@Success		200	{object}	map[string]interface{}
//	@Router			/ [get]
func HealthCheck(c *fiber.Ctx) error {
	res := map[string]interface{}{
		"data": "Server is up and running",
	}

	if err := c.JSON(res); err != nil {
		return err
	}

	return nil
}
