package util

import (
	"fmt"
	"movie_api/configs"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type MyJwtClaims struct {
	UserId      int64  `json:"userId"`
	Username    string `json:"username"`
	GeneratedAt int64  `json:"generatedAt"`
	ExpiresAt   int64  `json:"expiresAt"`
	jwt.RegisteredClaims
}

type TokenDetail struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  int64
	RefreshExpiresAt int64
}

func CreateJwtToken(userId int64, username string) (*TokenDetail, error) {
	now := time.Now()
	accessExpire := now.Add(configs.GetAccessTokenExpire())
	refreshExpire := now.Add(configs.GetRefreshTokenExpire())

	accessClaims := MyJwtClaims{
		UserId:      userId,
		Username:    username,
		GeneratedAt: now.UnixMilli(),
		ExpiresAt:   accessExpire.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpire),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).
		SignedString([]byte(configs.GetConfigs().AccessTokenSecret))
	if err != nil {
		return nil, err
	}

	refreshClaims := MyJwtClaims{
		UserId:      userId,
		Username:    username,
		GeneratedAt: now.UnixMilli(),
		ExpiresAt:   refreshExpire.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExpire),
		},
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).
		SignedString([]byte(configs.GetConfigs().RefreshTokenSecret))
	if err != nil {
		return nil, err
	}

	return &TokenDetail{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExpire.UnixMilli(),
		RefreshExpiresAt: refreshExpire.UnixMilli(),
	}, nil
}

func VerifyToken(tokenString string) (*jwt.Token, *MyJwtClaims, error) {
	claims := MyJwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signature method")
		}
		return []byte(configs.GetConfigs().AccessTokenSecret), nil
	})

	if err != nil {
		return nil, nil, err
	}

	return token, &claims, nil
}

func VerifyRefreshToken(tokenString string) (*jwt.Token, *MyJwtClaims, error) {
	claims := MyJwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signature method")
		}
		return []byte(configs.GetConfigs().RefreshTokenSecret), nil
	})

	if err != nil {
		return nil, nil, err
	}

	return token, &claims, nil
}
