package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Token signing. Two independent secrets: possession of one must not
	// allow minting tokens verifiable under the other.
	AccessTokenSecret          string
	AccessTokenExpiryDuration  time.Duration
	RefreshTokenSecret         string
	RefreshTokenExpiryDuration time.Duration
	RefreshTokenCookieName     string
	RefreshTokenCookiePath     string `mapstructure:"REFRESH_TOKEN_COOKIE_PATH"`
	JWTIssuer                  string

	// Duplicate-registration cache.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int    `mapstructure:"REDIS_DB"`
	SignupGuardTTL time.Duration

	// Password-reset protocol.
	ResetTokenTTL      time.Duration
	ResetMaxRequests   int
	ResetRequestWindow time.Duration

	// Outbound email.
	PostmarkServerToken  string `mapstructure:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `mapstructure:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `mapstructure:"SENDER_EMAIL"`

	// External OAuth providers.
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`
	GitHubClientID     string `mapstructure:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `mapstructure:"GITHUB_CLIENT_SECRET"`
	GitHubRedirectURL  string `mapstructure:"GITHUB_REDIRECT_URL"`
	FrontendBaseURL    string `mapstructure:"FRONTEND_BASE_URL"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ACCESS_TOKEN_SECRET", "")
	viper.SetDefault("ACCESS_TOKEN_EXPIRY_DURATION", "24h")
	viper.SetDefault("REFRESH_TOKEN_SECRET", "")
	viper.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h")
	viper.SetDefault("REFRESH_TOKEN_COOKIE_NAME", "rtid")
	viper.SetDefault("REFRESH_TOKEN_COOKIE_PATH", "/api/v1/auth/refresh")
	viper.SetDefault("JWT_ISSUER", "testaro-backend")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SIGNUP_GUARD_TTL", "6h")
	viper.SetDefault("RESET_TOKEN_TTL", "30m")
	viper.SetDefault("RESET_MAX_REQUESTS", 5)
	viper.SetDefault("RESET_REQUEST_WINDOW", "24h")
	viper.SetDefault("POSTMARK_SERVER_TOKEN", "")
	viper.SetDefault("POSTMARK_ACCOUNT_TOKEN", "")
	viper.SetDefault("SENDER_EMAIL", "no-reply@testaro.app")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("GITHUB_CLIENT_ID", "")
	viper.SetDefault("GITHUB_CLIENT_SECRET", "")
	viper.SetDefault("GITHUB_REDIRECT_URL", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.AccessTokenSecret = viper.GetString("ACCESS_TOKEN_SECRET")
	if cfg.AccessTokenSecret == "" {
		log.Println("Warning: ACCESS_TOKEN_SECRET not set. Token issuance will fail until it is configured.")
	}
	cfg.RefreshTokenSecret = viper.GetString("REFRESH_TOKEN_SECRET")
	if cfg.RefreshTokenSecret == "" {
		log.Println("Warning: REFRESH_TOKEN_SECRET not set. Token issuance will fail until it is configured.")
	}

	cfg.AccessTokenExpiryDuration = parseDurationOr("ACCESS_TOKEN_EXPIRY_DURATION", 24*time.Hour)
	cfg.RefreshTokenExpiryDuration = parseDurationOr("REFRESH_TOKEN_EXPIRY_DURATION", 7*24*time.Hour)
	cfg.RefreshTokenCookieName = viper.GetString("REFRESH_TOKEN_COOKIE_NAME")
	cfg.RefreshTokenCookiePath = viper.GetString("REFRESH_TOKEN_COOKIE_PATH")
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.RedisPassword = viper.GetString("REDIS_PASSWORD")
	cfg.RedisDB = viper.GetInt("REDIS_DB")
	cfg.SignupGuardTTL = parseDurationOr("SIGNUP_GUARD_TTL", 6*time.Hour)

	cfg.ResetTokenTTL = parseDurationOr("RESET_TOKEN_TTL", 30*time.Minute)
	cfg.ResetMaxRequests = viper.GetInt("RESET_MAX_REQUESTS")
	cfg.ResetRequestWindow = parseDurationOr("RESET_REQUEST_WINDOW", 24*time.Hour)

	cfg.PostmarkServerToken = viper.GetString("POSTMARK_SERVER_TOKEN")
	cfg.PostmarkAccountToken = viper.GetString("POSTMARK_ACCOUNT_TOKEN")
	cfg.SenderEmail = viper.GetString("SENDER_EMAIL")
	if cfg.PostmarkServerToken == "" {
		log.Println("Warning: POSTMARK_SERVER_TOKEN not set. Outbound email falls back to the log notifier.")
	}

	cfg.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = viper.GetString("GOOGLE_REDIRECT_URL")
	cfg.GitHubClientID = viper.GetString("GITHUB_CLIENT_ID")
	cfg.GitHubClientSecret = viper.GetString("GITHUB_CLIENT_SECRET")
	cfg.GitHubRedirectURL = viper.GetString("GITHUB_REDIRECT_URL")
	cfg.FrontendBaseURL = viper.GetString("FRONTEND_BASE_URL")

	if cfg.GoogleClientID == "" {
		log.Println("Warning: GOOGLE_CLIENT_ID not set. Google OAuth will not function.")
	}
	if cfg.GitHubClientID == "" {
		log.Println("Warning: GITHUB_CLIENT_ID not set. GitHub OAuth will not function.")
	}

	return cfg, nil
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
