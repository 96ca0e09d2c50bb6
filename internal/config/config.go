package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Chat     ChatConfig     `mapstructure:"chat"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Business BusinessConfig `mapstructure:"business"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, console
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Enabled bool             `mapstructure:"enabled"`
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	Notification string `mapstructure:"notification"`
}

// ChatConfig 订单状态通知发送到的聊天频道
type ChatConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	WebhookURL     string `mapstructure:"webhook_url"`
	Channel        string `mapstructure:"channel"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	TTLHours int    `mapstructure:"ttl_hours"`
	Issuer   string `mapstructure:"issuer"`
}

func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

type BusinessConfig struct {
	PurchaseConfirmDelayMinutes int    `mapstructure:"purchase_confirm_delay_minutes"`
	PurchaseConfirmSpec         string `mapstructure:"purchase_confirm_spec"`
	SystemAccountID             int64  `mapstructure:"system_account_id"`
	SweepBatchSize              int    `mapstructure:"sweep_batch_size"`
	MaxRetryCount               int    `mapstructure:"max_retry_count"`
	OutboxIntervalMs            int    `mapstructure:"outbox_interval_ms"`
	StockLockEnabled            bool   `mapstructure:"stock_lock_enabled"`
}

func (c BusinessConfig) PurchaseConfirmDelay() time.Duration {
	return time.Duration(c.PurchaseConfirmDelayMinutes) * time.Minute
}

func (c BusinessConfig) OutboxInterval() time.Duration {
	return time.Duration(c.OutboxIntervalMs) * time.Millisecond
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("mysql.host", "127.0.0.1")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.user", "root")
	v.SetDefault("mysql.database", "brandi")
	v.SetDefault("mysql.max_open_conns", 20)
	v.SetDefault("mysql.max_idle_conns", 5)
	v.SetDefault("mysql.auto_migrate", false)

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"127.0.0.1:9092"})
	v.SetDefault("kafka.topic.notification", "order-status-notification")

	v.SetDefault("chat.enabled", false)
	v.SetDefault("chat.timeout_seconds", 5)

	v.SetDefault("jwt.ttl_hours", 24)
	v.SetDefault("jwt.issuer", "sellerhub")

	v.SetDefault("business.purchase_confirm_delay_minutes", 10)
	v.SetDefault("business.purchase_confirm_spec", "@every 1m")
	v.SetDefault("business.system_account_id", 1)
	v.SetDefault("business.sweep_batch_size", 100)
	v.SetDefault("business.max_retry_count", 5)
	v.SetDefault("business.outbox_interval_ms", 500)
	v.SetDefault("business.stock_lock_enabled", true)
}

// Load 加载配置
// 先读取 .env（如果存在），环境变量 SELLERHUB_<SECTION>_<KEY> 覆盖配置文件
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SELLERHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret 不能为空")
	}
	if c.Business.PurchaseConfirmDelayMinutes <= 0 {
		return errors.New("business.purchase_confirm_delay_minutes 必须大于0")
	}
	if c.Business.SweepBatchSize <= 0 {
		return errors.New("business.sweep_batch_size 必须大于0")
	}
	if c.Chat.Enabled && c.Chat.WebhookURL == "" {
		return errors.New("chat.enabled 时 chat.webhook_url 不能为空")
	}
	return nil
}
