package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port             int    `envconfig:"PORT" default:"8080"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL      string `envconfig:"DATABASE_URL" required:"true"`
	JWTKeyPath       string `envconfig:"JWT_KEY_PATH" default:"jwt_key.pem"`
	ProfilersDir     string `envconfig:"PROFILERS_DIR" default:"profilers"`
	PracticeDir      string `envconfig:"PRACTICE_DIR" default:"practice"`
	BcryptCost       int    `envconfig:"BCRYPT_COST" default:"12"`
	AdminEmail       string `envconfig:"ADMIN_EMAIL" default:"admin@brightwave.local"`
	SessionTokenDays int    `envconfig:"SESSION_TOKEN_DAYS" default:"365"`
	ProfileTokenDays int    `envconfig:"PROFILE_TOKEN_DAYS" default:"1"`
	SeedDemoData     bool   `envconfig:"SEED_DEMO_DATA" default:"false"`
	Version          string `envconfig:"VERSION" default:"dev"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
