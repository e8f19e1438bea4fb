package middleware

import (
	"errors"
	"movie_api/pkg/response"
	"movie_api/util"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func AuthMiddleware(c *fiber.Ctx) error {
	accessToken := bearerToken(c)
	if accessToken == "" {
		return response.ResponseError(c, fiber.StatusUnauthorized, response.CodeUnauthorized, response.TokenNotProvided, nil)
	}
	return validateAccessToken(c, accessToken)
}

// OptionalAuthMiddleware identifies the caller when a token is present.
// Anonymous requests pass through, a presented token still has to be valid.
func OptionalAuthMiddleware(c *fiber.Ctx) error {
	accessToken := bearerToken(c)
	if accessToken == "" {
		return c.Next()
	}
	return validateAccessToken(c, accessToken)
}

func validateAccessToken(c *fiber.Ctx, accessToken string) error {
	_, claims, err := util.VerifyToken(accessToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return response.ResponseError(c, fiber.StatusUnauthorized, response.CodeTokenExpired, response.TokenExpired, nil)
		}
		return response.ResponseError(c, fiber.StatusUnauthorized, response.CodeInvalidToken, response.InvalidToken, nil)
	}
	if claims == nil || claims.UserId == 0 {
		return response.ResponseError(c, fiber.StatusUnauthorized, response.CodeInvalidToken, response.InvalidToken, nil)
	}

	c.Locals("accessToken", accessToken)
	c.Locals("jwtUserData", claims)
	return c.Next()
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization, "")
	strArr := strings.Split(header, " ")
	if len(strArr) == 2 && strings.EqualFold(strArr[0], "Bearer") {
		return strArr[1]
	}
	return ""
}

// GetJwtClaims returns the authenticated caller, nil for anonymous requests.
func GetJwtClaims(c *fiber.Ctx) *util.MyJwtClaims {
	claims, ok := c.Locals("jwtUserData").(*util.MyJwtClaims)
	if !ok {
		return nil
	}
	return claims
}

func GetUserId(c *fiber.Ctx) int64 {
	claims := GetJwtClaims(c)
	if claims == nil {
		return 0
	}
	return claims.UserId
}

var (
	LocalhostRegex = regexp.MustCompile(`(?i)^(https?://)?localhost(:\d{4})?$`)
)
