package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Data     DataConfig     `mapstructure:"data"`
	Game     GameConfig     `mapstructure:"game"`
	Security SecurityConfig `mapstructure:"security"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // memory | sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
}

// DataConfig points at the catalog files (items, monsters, spawns, locations).
// An empty Dir means catalogs are read from the database only.
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

type GameConfig struct {
	BaseDiceCount      int           `mapstructure:"base_dice_count"`
	BaseDiceFaces      int           `mapstructure:"base_dice_faces"`
	SkillExpPerUse     int           `mapstructure:"skill_exp_per_use"`
	BonusCacheTTL      time.Duration `mapstructure:"bonus_cache_ttl"`
	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout"`
	SessionGCInterval  time.Duration `mapstructure:"session_gc_interval"`
	SpawnAuditInterval time.Duration `mapstructure:"spawn_audit_interval"`
	RNGSeed            int64         `mapstructure:"rng_seed"` // 0 = crypto seeded
	StartLocationID    string        `mapstructure:"start_location_id"`
}

type SecurityConfig struct {
	RateLimitRPS   float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	AdminIPs       []string `mapstructure:"admin_ips"` // empty = any
}

// Load reads config from the given YAML file path. An empty path uses
// defaults and environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ROADQUEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.admin_key", "")
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/roadquest.db")
	v.SetDefault("database.mysql_dsn", "")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("data.dir", "./data/catalog")
	v.SetDefault("game.base_dice_count", 2)
	v.SetDefault("game.base_dice_faces", 6)
	v.SetDefault("game.skill_exp_per_use", 10)
	v.SetDefault("game.bonus_cache_ttl", "10m")
	v.SetDefault("game.session_idle_timeout", "15m")
	v.SetDefault("game.session_gc_interval", "1m")
	v.SetDefault("game.spawn_audit_interval", "10m")
	v.SetDefault("game.rng_seed", 0)
	v.SetDefault("game.start_location_id", "town_start")
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)
	v.SetDefault("security.admin_ips", []string{})

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
