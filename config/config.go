package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

const (
	ProviderDify   = "dify"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

var ErrMissingAIKey = errors.New("AI provider API key is not configured")

type Config struct {
	Mode   string `mapstructure:"mode"`
	Dotenv string `mapstructure:"dotenv"`
	Server struct {
		HTTPPort     string        `mapstructure:"HTTPPort"`
		Timeout      time.Duration `mapstructure:"HTTPTimeout"`
		ReadTimeout  time.Duration `mapstructure:"readTimeout"`
		WriteTimeout time.Duration `mapstructure:"writeTimeout"`
		IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
	} `mapstructure:"server"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	AI         AIConfig         `mapstructure:"ai"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Navigation struct {
		Services []MapService `mapstructure:"services"`
		CacheTTL time.Duration `mapstructure:"cacheTTL"`
	} `mapstructure:"navigation"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
	Observability struct {
		ServiceName string `mapstructure:"serviceName"`
		MetricsPort string `mapstructure:"metricsPort"`
	} `mapstructure:"observability"`
	OAuth struct {
		SessionSecret string `mapstructure:"sessionSecret"`
		Google        struct {
			ClientID     string `mapstructure:"clientID"`
			ClientSecret string `mapstructure:"clientSecret"`
			CallbackURL  string `mapstructure:"callbackURL"`
		} `mapstructure:"google"`
	} `mapstructure:"oauth"`
	RateLimit struct {
		ChatPerMinute int `mapstructure:"chatPerMinute"`
	} `mapstructure:"rateLimit"`
}

type JWTConfig struct {
	SecretKey  string        `mapstructure:"secretKey"`
	Issuer     string        `mapstructure:"issuer"`
	Audience   string        `mapstructure:"audience"`
	AccessTTL  time.Duration `mapstructure:"accessTTL"`
	RefreshTTL time.Duration `mapstructure:"refreshTTL"`
}

type AIConfig struct {
	Provider       string `mapstructure:"provider"`
	FallbackToMock bool   `mapstructure:"fallbackToMock"`
	Dify           struct {
		BaseURL     string        `mapstructure:"baseURL"`
		APIKey      string        `mapstructure:"apiKey"`
		Timeout     time.Duration `mapstructure:"timeout"`
		MaxRetries  int           `mapstructure:"maxRetries"`
		DefaultUser string        `mapstructure:"defaultUser"`
	} `mapstructure:"dify"`
	Gemini struct {
		APIKey string `mapstructure:"apiKey"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"gemini"`
}

type ExtractionConfig struct {
	MaxAttractionsPerResponse int    `mapstructure:"maxAttractionsPerResponse"`
	DefaultAttractionImage    string `mapstructure:"defaultAttractionImage"`
}

// MapService is a navigation deep link; URLTemplate contains an {address}
// placeholder.
type MapService struct {
	Key         string `mapstructure:"key"`
	Name        string `mapstructure:"name"`
	URLTemplate string `mapstructure:"urlTemplate"`
	Priority    int    `mapstructure:"priority"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"ai.dify.apiKey":                       "DIFY_API_KEY",
	"ai.dify.baseURL":                      "DIFY_API_URL",
	"ai.gemini.apiKey":                     "GOOGLE_GEMINI_API_KEY",
	"ai.provider":                          "AI_PROVIDER",
	"jwt.secretKey":                        "JWT_SECRET_KEY",
	"repositories.postgres.host":           "POSTGRES_HOST",
	"repositories.postgres.port":           "POSTGRES_PORT",
	"repositories.postgres.username":       "POSTGRES_USER",
	"repositories.postgres.password":       "POSTGRES_PASSWORD",
	"repositories.postgres.db":             "POSTGRES_DB",
	"extraction.maxAttractionsPerResponse": "MAX_ATTRACTIONS_PER_RESPONSE",
	"extraction.defaultAttractionImage":    "DEFAULT_ATTRACTION_IMAGE",
	"oauth.sessionSecret":                  "SESSION_SECRET",
	"oauth.google.clientID":                "GOOGLE_CLIENT_ID",
	"oauth.google.clientSecret":            "GOOGLE_CLIENT_SECRET",
	"mode":                                 "APP_ENV",
}

func InitConfig() (Config, error) {
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	return unmarshal(v)
}

// Load reads configuration from an in-memory YAML document. Environment
// bindings still apply.
func Load(doc []byte) (Config, error) {
	v := viper.New()
	v.SetConfigType("yml")
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	if err := v.ReadConfig(bytes.NewReader(doc)); err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return unmarshal(v)
}

// Embedded loads the configuration compiled into the binary.
func Embedded() (Config, error) {
	return Load(embeddedConfig)
}

func unmarshal(v *viper.Viper) (Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Extraction.MaxAttractionsPerResponse == 0 {
		c.Extraction.MaxAttractionsPerResponse = 5
	}
	if c.AI.Provider == "" {
		c.AI.Provider = ProviderDify
	}
	if c.AI.Dify.Timeout == 0 {
		c.AI.Dify.Timeout = 30 * time.Second
	}
	if c.AI.Dify.DefaultUser == "" {
		c.AI.Dify.DefaultUser = "default_user"
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = 24 * time.Hour
	}
	if c.JWT.RefreshTTL == 0 {
		c.JWT.RefreshTTL = 30 * 24 * time.Hour
	}
	if c.Navigation.CacheTTL == 0 {
		c.Navigation.CacheTTL = 10 * time.Minute
	}
}

// Validate checks the settings the server cannot start without. The returned
// warnings are non-fatal.
func (c Config) Validate() (warnings []string, err error) {
	switch strings.ToLower(c.AI.Provider) {
	case ProviderDify:
		if c.AI.Dify.APIKey == "" {
			return nil, fmt.Errorf("%w: set DIFY_API_KEY", ErrMissingAIKey)
		}
		if !strings.HasPrefix(c.AI.Dify.APIKey, "app-") {
			warnings = append(warnings, "DIFY_API_KEY does not start with 'app-'")
		}
		if c.AI.Dify.BaseURL == "" {
			return nil, errors.New("ai.dify.baseURL is empty")
		}
	case ProviderGemini:
		if c.AI.Gemini.APIKey == "" {
			return nil, fmt.Errorf("%w: set GOOGLE_GEMINI_API_KEY", ErrMissingAIKey)
		}
	case ProviderMock:
	default:
		return nil, fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}

	if c.JWT.SecretKey == "" {
		return nil, errors.New("jwt.secretKey is empty: set JWT_SECRET_KEY")
	}
	if c.Extraction.MaxAttractionsPerResponse < 0 {
		return nil, errors.New("extraction.maxAttractionsPerResponse must not be negative")
	}
	return warnings, nil
}
