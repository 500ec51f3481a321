// Package config 加载服务配置：先读 .env，再由环境变量覆盖默认值。
package config

import (
	"fmt"
	"time"

	"forumcore/internal/models"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env      string     `env:"ENV" env-default:"local"`
	HTTP     HTTPConfig `env-prefix:"HTTP_"`
	DB       DBConfig
	Redis    RedisConfig    `env-prefix:"REDIS_"`
	Comments CommentsConfig `env-prefix:"COMMENTS_"`
	Karma    KarmaConfig    `env-prefix:"KARMA_"`
	Cache    CacheConfig    `env-prefix:"CACHE_"`
	Ranking  RankingConfig  `env-prefix:"RANKING_"`
}

type HTTPConfig struct {
	Addr          string `env:"ADDR" env-default:":8080"`
	SessionSecret string `env:"SESSION_SECRET" env-default:"secret_key_change_me"`
	SessionName   string `env:"SESSION_NAME" env-default:"forumcore_session"`
}

type DBConfig struct {
	// DATABASE_URL 与原部署保持一致，不加前缀
	URL string `env:"DATABASE_URL" env-default:"host=localhost user=postgres password=postgres dbname=forumcore port=5432 sslmode=disable"`
}

// RedisConfig 事件发布。Enabled=false 时只写通知表和日志
type RedisConfig struct {
	Enabled  bool   `env:"ENABLED" env-default:"false"`
	Addr     string `env:"ADDR" env-default:"localhost:6379"`
	Password string `env:"PASSWORD"`
	Prefix   string `env:"PREFIX" env-default:"forumcore:events"`
}

type CommentsConfig struct {
	MaxDepth     int `env:"MAX_DEPTH" env-default:"10"`
	DefaultLimit int `env:"DEFAULT_LIMIT" env-default:"50"`
	MaxLimit     int `env:"MAX_LIMIT" env-default:"200"`
}

type KarmaConfig struct {
	// 关闭后给自己的内容投票/打赏不再加减积分
	DisableSelfKarma bool `env:"DISABLE_SELF_KARMA" env-default:"false"`
}

type CacheConfig struct {
	Size int           `env:"SIZE" env-default:"500"`
	TTL  time.Duration `env:"TTL" env-default:"1m"`
}

// RankingConfig rerank 命令的处理范围
type RankingConfig struct {
	Window time.Duration `env:"WINDOW" env-default:"168h"`
	TopN   int           `env:"TOP_N" env-default:"30"`
}

// Load 读取配置。envFiles 为空时尝试当前目录的 .env，文件不存在不算错误
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad 加载失败直接 panic，用于启动阶段
func MustLoad(envFiles ...string) *Config {
	cfg, err := Load(envFiles...)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Default returns the configuration with every default applied, ignoring the environment.
func Default() Config {
	return Config{
		Env:      EnvLocal,
		HTTP:     HTTPConfig{Addr: ":8080", SessionSecret: "secret_key_change_me", SessionName: "forumcore_session"},
		Redis:    RedisConfig{Addr: "localhost:6379", Prefix: "forumcore:events"},
		Comments: CommentsConfig{MaxDepth: 10, DefaultLimit: 50, MaxLimit: 200},
		Cache:    CacheConfig{Size: 500, TTL: time.Minute},
		Ranking:  RankingConfig{Window: 7 * 24 * time.Hour, TopN: 30},
	}
}

func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Comments.MaxDepth <= 0 || c.Comments.MaxDepth > models.MaxCommentDepth {
		return fmt.Errorf("COMMENTS_MAX_DEPTH must be in (0, %d]", models.MaxCommentDepth)
	}
	if c.Comments.DefaultLimit <= 0 || c.Comments.MaxLimit <= 0 {
		return fmt.Errorf("comment limits must be > 0")
	}
	if c.Comments.DefaultLimit > c.Comments.MaxLimit {
		return fmt.Errorf("COMMENTS_DEFAULT_LIMIT must be <= COMMENTS_MAX_LIMIT")
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("CACHE_SIZE must be > 0")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required when REDIS_ENABLED=true")
	}
	return nil
}
