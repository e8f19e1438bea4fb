package main

import (
	"log"
	"movie_api/api"
	"movie_api/configs"
	"movie_api/db"
	"movie_api/db/redis"
	"movie_api/internal/handler"
	"movie_api/internal/repository"
	"movie_api/internal/service"
	"time"

	"github.com/getsentry/sentry-go"
)

// @title						Movie Api
// @version					1.0
// @description				Movie catalog service: browsing/search backed by tmdb, favorites, jwt auth.
// @termsOfService				http://swagger.io/terms/
// @contact.name				API Support
// @contact.url				http://www.swagger.io/support
// @contact.email				support@swagger.io
// @license.name				Apache 2.0
// @license.url				http://www.apache.org/licenses/LICENSE-2.0.html
// @BasePath					/
// @schemes					https
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				Type "Bearer" followed by a space and JWT token.
// @Accept						json
// @Produce					json
func main() {
	configs.LoadEnvVariables()

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              configs.GetConfigs().SentryDns,
		Release:          configs.GetConfigs().SentryRelease,
		TracesSampleRate: 1,
		EnableTracing:    true,
		AttachStacktrace: true,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	// Flush buffered events before the program terminates.
	defer sentry.Flush(2 * time.Second)

	go redis.ConnectRedis()

	database, err := db.NewDatabase()
	if err != nil {
		log.Fatalf("could not initialize database connection: %s", err)
	}
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("could not migrate database: %s", err)
	}

	userRep := repository.NewUserRepository(database.GetDB())
	movieRep := repository.NewMovieRepository(database.GetDB())

	cacheSvc := service.NewCacheService(redis.NewStore())
	tmdbSvc := service.NewTmdbService()
	userSvc := service.NewUserService(userRep)
	movieSvc := service.NewMovieService(movieRep, tmdbSvc, cacheSvc)

	userHandler := handler.NewUserHandler(userSvc)
	movieHandler := handler.NewMovieHandler(movieSvc)

	api.InitRouter(userHandler, movieHandler)
	api.Start("0.0.0.0:" + configs.GetConfigs().Port)
}
