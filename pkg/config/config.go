package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置（环境变量驱动，.env 可覆盖）
type Config struct {
	ServerPort string
	GinMode    string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Etsy 应用凭证与回调地址
	EtsyAPIKey       string
	OAuthCallbackURL string

	// 定时任务
	AutoSyncEnabled bool
	AutoSyncSpec    string // cron 表达式（带秒）
}

// Load 加载配置
// 先尝试读取 .env（不存在则忽略），再由环境变量覆盖默认值
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DATABASE_DSN", "host=localhost user=crm_admin password=1234 dbname=etsy_crm port=5432 sslmode=disable")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ETSY_API_KEY", "")
	v.SetDefault("OAUTH_CALLBACK_URL", "http://localhost:8080/api/v1/auth/callback")
	v.SetDefault("AUTO_SYNC_ENABLED", true)
	v.SetDefault("AUTO_SYNC_SPEC", "0 */10 * * * *")

	return &Config{
		ServerPort:       v.GetString("SERVER_PORT"),
		GinMode:          v.GetString("GIN_MODE"),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		EtsyAPIKey:       v.GetString("ETSY_API_KEY"),
		OAuthCallbackURL: v.GetString("OAUTH_CALLBACK_URL"),
		AutoSyncEnabled:  v.GetBool("AUTO_SYNC_ENABLED"),
		AutoSyncSpec:     v.GetString("AUTO_SYNC_SPEC"),
	}
}
