package configs

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type ConfigStruct struct {
	Port                      string
	AccessTokenSecret         string
	RefreshTokenSecret        string
	AccessTokenExpireMin      int
	RefreshTokenExpireDay     int
	WaitForRedisConnectionSec int
	RedisUrl                  string
	RedisPassword             string
	DbUrl                     string
	TmdbApiKey                string
	TmdbBaseUrl               string
	TmdbTimeoutSec            int
	RateLimitRequests         int
	RateLimitWindowSec        int
	CorsAllowedOrigins        []string
	SentryDns                 string
	SentryRelease             string
	PrintErrors               bool
	ServerAddress             string
	Domain                    string
}

var configs = ConfigStruct{}

func GetConfigs() ConfigStruct {
	return configs
}

func LoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Error loading .env file: %v", err)
	}

	configs.Port = os.Getenv("PORT")
	configs.DbUrl = os.Getenv("POSTGRES_DATABASE_URL")
	configs.AccessTokenSecret = os.Getenv("ACCESS_TOKEN_SECRET")
	configs.RefreshTokenSecret = os.Getenv("REFRESH_TOKEN_SECRET")
	configs.AccessTokenExpireMin, _ = strconv.Atoi(os.Getenv("ACCESS_TOKEN_EXPIRE_MIN"))
	if configs.AccessTokenExpireMin == 0 {
		configs.AccessTokenExpireMin = 15
	}
	configs.RefreshTokenExpireDay, _ = strconv.Atoi(os.Getenv("REFRESH_TOKEN_EXPIRE_DAY"))
	if configs.RefreshTokenExpireDay == 0 {
		configs.RefreshTokenExpireDay = 7
	}
	configs.RedisUrl = os.Getenv("REDIS_URL")
	configs.RedisPassword = os.Getenv("REDIS_PASSWORD")
	configs.WaitForRedisConnectionSec, _ = strconv.Atoi(os.Getenv("WAIT_REDIS_CONNECTION_SEC"))
	configs.TmdbApiKey = os.Getenv("TMDB_API_KEY")
	configs.TmdbBaseUrl = strings.TrimSuffix(os.Getenv("TMDB_BASE_URL"), "/")
	if configs.TmdbBaseUrl == "" {
		configs.TmdbBaseUrl = "https://api.themoviedb.org/3"
	}
	configs.TmdbTimeoutSec, _ = strconv.Atoi(os.Getenv("TMDB_TIMEOUT_SEC"))
	if configs.TmdbTimeoutSec == 0 {
		configs.TmdbTimeoutSec = 10
	}
	configs.RateLimitRequests, _ = strconv.Atoi(os.Getenv("RATE_LIMIT_REQUESTS"))
	if configs.RateLimitRequests == 0 {
		configs.RateLimitRequests = 60
	}
	configs.RateLimitWindowSec, _ = strconv.Atoi(os.Getenv("RATE_LIMIT_WINDOW_SEC"))
	if configs.RateLimitWindowSec == 0 {
		configs.RateLimitWindowSec = 60
	}
	configs.CorsAllowedOrigins = strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), "---")
	for i := range configs.CorsAllowedOrigins {
		configs.CorsAllowedOrigins[i] = strings.TrimSpace(configs.CorsAllowedOrigins[i])
	}
	configs.SentryDns = os.Getenv("SENTRY_DNS")
	configs.SentryRelease = os.Getenv("SENTRY_RELEASE")
	configs.PrintErrors = os.Getenv("PRINT_ERRORS") == "true"
	configs.ServerAddress = os.Getenv("SERVER_ADDRESS")
	configs.Domain = os.Getenv("DOMAIN")
}

func GetAccessTokenExpire() time.Duration {
	return time.Duration(configs.AccessTokenExpireMin) * time.Minute
}

func GetRefreshTokenExpire() time.Duration {
	return time.Duration(configs.RefreshTokenExpireDay) * 24 * time.Hour
}
