package config // package config loads application configuration from environment variables

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable; nested structs group the optional subsystems.
type Config struct {
	Env            string `env:"APP_ENV" envDefault:"dev"`     // application environment (dev, test, prod)
	Port           string `env:"APP_PORT" envDefault:"8080"`   // HTTP port to listen on
	DBUser         string `env:"DB_USER,required"`             // database username
	DBPass         string `env:"DB_PASS"`                      // database password (optional)
	DBHost         string `env:"DB_HOST,required"`             // database host address
	DBPort         string `env:"DB_PORT" envDefault:"3306"`    // database port number
	DBName         string `env:"DB_NAME,required"`             // database name
	JWTSecret      string `env:"JWT_SECRET,required"`          // secret used to sign JWTs
	AccessTTLMin   int    `env:"ACCESS_TOKEN_TTL_MIN" envDefault:"60"`
	RefreshTTLDays int    `env:"REFRESH_TOKEN_TTL_DAYS" envDefault:"30"`
	BcryptCost     int    `env:"BCRYPT_COST" envDefault:"10"` // bcrypt cost for PIN hashing

	NotificationLimit int    `env:"NOTIFICATION_LIMIT" envDefault:"20"` // notifications kept per user
	ChatHistoryLimit  int    `env:"CHAT_HISTORY_LIMIT" envDefault:"50"` // chat messages kept in memory
	RabbitURL         string `env:"RABBITMQ_URL"`                       // empty disables the broker

	UsersRefresh time.Duration `env:"USERS_REFRESH_INTERVAL" envDefault:"5m"` // directory reload period

	TMDB      TMDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
}

// TMDBConfig configures the movie metadata client.  An empty APIKey
// disables search; manual entry keeps working.
type TMDBConfig struct {
	APIKey       string        `env:"TMDB_API_KEY"`
	BaseURL      string        `env:"TMDB_BASE_URL" envDefault:"https://api.themoviedb.org/3"`
	ImageBaseURL string        `env:"TMDB_IMAGE_BASE_URL" envDefault:"https://image.tmdb.org/t/p/w500"`
	Timeout      time.Duration `env:"TMDB_TIMEOUT" envDefault:"5s"`
	RatePerSec   float64       `env:"TMDB_RATE_PER_SEC" envDefault:"10"`
}

// Load reads a .env file when one exists, then parses the environment.
// Variables already set in the process win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return parse()
}

func parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET must not be empty")
	}
	cfg.RateLimit.normalize()
	cfg.Cache.normalize()
	return cfg, nil
}

// IsProd reports whether the service runs in production mode.
func (c Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}
