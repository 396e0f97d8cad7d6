package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	MigrationsPath  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

type StorageConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	BucketVideos string
	BucketFrames string
	UseSSL       bool
	Region       string
}

type SecurityConfig struct {
	JWTAccessSecret string
	JWTAccessTTL    time.Duration
	JWTRefreshTTL   time.Duration
	MaxSessions     int
}

type DetectionConfig struct {
	AlertThreshold    float64
	InitialThreshold  float64
	LearningRate      float64
	MaxVideoSizeMB    int64
	FrameSize         int
	HeartbeatInterval time.Duration
	HeartbeatTTL      time.Duration
}

type WorkerConfig struct {
	ClaimInterval time.Duration
	TempDir       string
}

type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Detection        DetectionConfig
	Worker           WorkerConfig
	Metrics          MetricsConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("AUTOVISION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "30s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.migrationspath", "migrations")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "autovision:jobs")
	v.SetDefault("redis.group", "autovision-workers")
	v.SetDefault("redis.consumer", "worker-1")

	v.SetDefault("storage.bucketvideos", "autovision-videos")
	v.SetDefault("storage.bucketframes", "autovision-frames")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("security.jwtaccessttl", "15m")
	v.SetDefault("security.jwtrefreshttl", "720h") // 30 days
	v.SetDefault("security.maxsessions", 10)

	v.SetDefault("detection.alertthreshold", 0.8)
	v.SetDefault("detection.initialthreshold", 0.5)
	v.SetDefault("detection.learningrate", 0.01)
	v.SetDefault("detection.maxvideosizemb", 100)
	v.SetDefault("detection.framesize", 512)
	v.SetDefault("detection.heartbeatinterval", "10s")
	v.SetDefault("detection.heartbeatttl", "30s")

	v.SetDefault("worker.claiminterval", "30s")
	v.SetDefault("worker.tempdir", "")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "autovision")
}
