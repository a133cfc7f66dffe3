package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 从 YAML（可选）+ 环境变量读取，环境变量优先
type Config struct {
	Port        string `yaml:"port"`
	LogLevel    string `yaml:"logLevel"`
	DatabaseURL string `yaml:"databaseURL"`

	DBHost     string `yaml:"dbHost"`
	DBPort     string `yaml:"dbPort"`
	DBUser     string `yaml:"dbUser"`
	DBPassword string `yaml:"dbPassword"`
	DBName     string `yaml:"dbName"`

	RedisAddr string `yaml:"redisAddr"`
	RedisPwd  string `yaml:"redisPassword"`

	WebOrigin   string        `yaml:"webOrigin"`
	JWTSecret   string        `yaml:"jwtSecret"`
	SessionTTL  time.Duration `yaml:"sessionTTL"`
	AdminEmails []string      `yaml:"adminEmails"`

	BootstrapAdminEmail string `yaml:"bootstrapAdminEmail"`

	SeenThrottle    time.Duration `yaml:"seenThrottle"`
	NotifyQueueSize int           `yaml:"notifyQueueSize"`
	ArchiveDir      string        `yaml:"archiveDir"`
	ArchiveAfter    time.Duration `yaml:"archiveAfter"`
}

// LoadEnv 读取 .env（不存在时忽略）
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("load .env failed", "err", err)
	}
}

func defaults() Config {
	return Config{
		Port:            "3001",
		LogLevel:        "info",
		DBHost:          "127.0.0.1",
		DBPort:          "5432",
		DBUser:          "postgres",
		DBName:          "assets",
		RedisAddr:       "127.0.0.1:6379",
		WebOrigin:       "http://localhost:3000",
		SessionTTL:      24 * time.Hour,
		SeenThrottle:    5 * time.Minute,
		NotifyQueueSize: 256,
		ArchiveDir:      "archives",
		ArchiveAfter:    365 * 24 * time.Hour,
	}
}

// Load 先取默认值，再叠加 CONFIG_FILE 指向的 YAML，最后叠加环境变量
func Load() (Config, error) {
	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(&cfg)
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	str := func(k string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			*dst = v
		}
	}
	dur := func(k string, dst *time.Duration) {
		v := strings.TrimSpace(os.Getenv(k))
		if v == "" {
			return
		}
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
			return
		}
		// 兼容纯秒数
		if n, err := strconv.Atoi(v); err == nil {
			*dst = time.Duration(n) * time.Second
		}
	}

	str("PORT", &cfg.Port)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("DB_HOST", &cfg.DBHost)
	str("DB_PORT", &cfg.DBPort)
	str("DB_USER", &cfg.DBUser)
	str("DB_PASSWORD", &cfg.DBPassword)
	str("DB_NAME", &cfg.DBName)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("REDIS_PASSWORD", &cfg.RedisPwd)
	str("WEB_ORIGIN", &cfg.WebOrigin)
	str("JWT_SECRET", &cfg.JWTSecret)
	str("BOOTSTRAP_ADMIN_EMAIL", &cfg.BootstrapAdminEmail)
	str("ARCHIVE_DIR", &cfg.ArchiveDir)
	dur("SESSION_TTL", &cfg.SessionTTL)
	dur("SEEN_THROTTLE", &cfg.SeenThrottle)
	dur("ARCHIVE_AFTER", &cfg.ArchiveAfter)

	if v := strings.TrimSpace(os.Getenv("NOTIFY_QUEUE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NotifyQueueSize = n
		}
	}
	if v, ok := os.LookupEnv("ADMIN_EMAILS"); ok { // 例如: "admin@ex.com,ops@ex.com"
		cfg.AdminEmails = splitCSV(v)
	}
	for i, e := range cfg.AdminEmails {
		cfg.AdminEmails[i] = strings.ToLower(strings.TrimSpace(e))
	}
	cfg.BootstrapAdminEmail = strings.ToLower(cfg.BootstrapAdminEmail)
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// DSN 优先使用 DATABASE_URL
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

// IsAdminEmail 判断邮箱是否在 ADMIN_EMAILS 白名单里
func (c Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range c.AdminEmails {
		if a == email {
			return true
		}
	}
	return false
}

// SecureCookies 前端走 https 时才设置 Secure
func (c Config) SecureCookies() bool { return strings.HasPrefix(c.WebOrigin, "https://") }
