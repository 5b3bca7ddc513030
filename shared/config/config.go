package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	PublicURL      string    `yaml:"public_url"`
	ReservedBoards []string  `yaml:"reserved_boards"`
	LatestThreads  int       `yaml:"latest_threads" validate:"gte=0"`  // threads shown in board preview
	LatestReplies  int       `yaml:"latest_replies" validate:"gte=0"`  // replies shown per thread in board preview
	MaxTextLength  int       `yaml:"max_text_length" validate:"gte=0"` // in runes, 0 keeps text unbounded
	SanitizeText   bool      `yaml:"sanitize_text"`                    // strip markup before storing
	MaxBodySize    int64     `yaml:"max_body_size" validate:"gte=0"`   // in bytes
	PasswordScheme string    `yaml:"password_scheme" validate:"omitempty,oneof=plain bcrypt"`
	LogLevel       string    `yaml:"log_level"`
	LogJSON        bool      `yaml:"log_json"`
	CorsOrigins    []string  `yaml:"cors_origins"`
	SecureCookies  bool      `yaml:"secure_cookies"` // HSTS header, set when served over https
	RateLimit      RateLimit `yaml:"rate_limit"`
	Store          Store     `yaml:"store" validate:"required"`
}

type RateLimit struct {
	PostsPerMinute float64 `yaml:"posts_per_minute" validate:"gte=0"` // 0 disables limiting
	Burst          float64 `yaml:"burst" validate:"gte=0"`
}

type Store struct {
	Driver              string        `yaml:"driver" validate:"required,oneof=memory pg redis mongo"`
	Timeout             time.Duration `yaml:"timeout"`
	UpdateAttempts      int           `yaml:"update_attempts" validate:"gte=0"`
	BreakerFailureRatio float64       `yaml:"breaker_failure_ratio" validate:"gte=0,lte=1"`
	BreakerMinRequests  uint32        `yaml:"breaker_min_requests"`
	BreakerOpenTimeout  time.Duration `yaml:"breaker_open_timeout"`
}

type Private struct {
	Pg       Pg     `yaml:"pg"`
	RedisURL string `yaml:"redis_url"`
	Mongo    Mongo  `yaml:"mongo"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Mongo struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

func (p *Public) applyDefaults() {
	if p.ReservedBoards == nil {
		p.ReservedBoards = []string{"test"}
	}
	if p.LatestThreads == 0 {
		p.LatestThreads = 10
	}
	if p.LatestReplies == 0 {
		p.LatestReplies = 3
	}
	if p.MaxBodySize == 0 {
		p.MaxBodySize = 1 << 20
	}
	if p.PasswordScheme == "" {
		p.PasswordScheme = "plain"
	}
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.Store.Timeout == 0 {
		p.Store.Timeout = 5 * time.Second
	}
	if p.Store.UpdateAttempts == 0 {
		p.Store.UpdateAttempts = 5
	}
	if p.Store.BreakerFailureRatio == 0 {
		p.Store.BreakerFailureRatio = 0.8
	}
	if p.Store.BreakerMinRequests == 0 {
		p.Store.BreakerMinRequests = 5
	}
	if p.Store.BreakerOpenTimeout == 0 {
		p.Store.BreakerOpenTimeout = 30 * time.Second
	}
}

// validate checks struct tags and the credentials the selected driver needs.
func (c *Config) validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return err
	}
	switch c.Public.Store.Driver {
	case "pg":
		if c.Private.Pg.Host == "" || c.Private.Pg.Dbname == "" {
			return fmt.Errorf("pg driver needs pg.host and pg.dbname")
		}
	case "redis":
		if c.Private.RedisURL == "" {
			return fmt.Errorf("redis driver needs redis_url")
		}
	case "mongo":
		if c.Private.Mongo.URI == "" || c.Private.Mongo.Database == "" {
			return fmt.Errorf("mongo driver needs mongo.uri and mongo.database")
		}
	}
	return nil
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)
	public.applyDefaults()

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	if err := cfg.validate(); err != nil {
		panic("invalid config: " + err.Error())
	}
	return cfg
}
