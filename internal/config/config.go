package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config ward-census 配置
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled    bool
	Database     DatabaseConfig
	RedisEnabled bool
	Redis        RedisConfig
	Log          struct {
		Level  string
		Format string
	}
	// Location the wards keep their journal in; "now" is read in this zone.
	Location *time.Location
	Import   ImportConfig
	Snapshot SnapshotConfig
	// EventsStream is the Redis stream import events are appended to.
	EventsStream string
	// CatalogFile optionally points at a TOML seed catalog.
	CatalogFile string
}

// ImportConfig 导入配置
type ImportConfig struct {
	SheetName       string
	FallbackToFirst bool  // 未匹配的病房/医生回退为第一个（兼容旧行为）
	MaxUploadBytes  int64 // multipart 上传上限
}

// SnapshotConfig 快照配置
type SnapshotConfig struct {
	InclusiveDischarge bool
	CacheTTL           time.Duration // 0 disables caching
}

func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Without a database the server keeps records in memory.
	cfg.DBEnabled = getEnv("DB_ENABLED", "false") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "ward_census")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	tz := getEnv("WARD_TIMEZONE", "Asia/Tashkent")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid WARD_TIMEZONE %q: %w", tz, err)
	}
	cfg.Location = loc

	cfg.Import.SheetName = getEnv("IMPORT_SHEET_NAME", "PalataQabul")
	cfg.Import.FallbackToFirst = getEnv("IMPORT_FALLBACK_TO_FIRST", "false") == "true"
	cfg.Import.MaxUploadBytes = int64(parseInt(getEnv("IMPORT_MAX_UPLOAD_BYTES", "33554432"), 32<<20))

	cfg.Snapshot.InclusiveDischarge = getEnv("SNAPSHOT_INCLUSIVE_DISCHARGE", "false") == "true"
	cfg.Snapshot.CacheTTL = time.Duration(parseInt(getEnv("SNAPSHOT_CACHE_TTL_SECONDS", "60"), 60)) * time.Second

	cfg.EventsStream = getEnv("EVENTS_STREAM", "ward-census:imports")
	cfg.CatalogFile = getEnv("CATALOG_FILE", "")

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
