package config

import (
	"bytes"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppCfg struct {
	Name string
	Env  string
	Host string
	Port int
}

type RootCfg struct {
	ApiBearerToken        string
	UserBearerTokenPrefix string
	SecretPepper          string
}

type LogCfg struct {
	Level string
}

// BackendCfg selects which record store answers the API: "relational" or "airtable".
type BackendCfg struct {
	Kind string
}

type DBCfg struct {
	Driver      string
	DSN         string
	MaxOpen     int
	MaxIdle     int
	AutoMigrate bool
}

type RedisCfg struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	BridgeTTLSec int
}

type MQCfg struct {
	URL      string
	Exchange string
}

type S3Cfg struct {
	Endpoint         string
	Region           string
	AccessKey        string
	SecretKey        string
	Bucket           string
	UsePathStyle     bool
	PresignExpireSec int
	SSE              string
	ExportPrefix     string
}

type AirtableCfg struct {
	BaseURL    string
	BaseID     string
	Token      string
	TimeoutSec int
}

type GatewayCfg struct {
	Concurrency int
}

type TelemetryCfg struct {
	Enabled      bool
	OtlpEndpoint string
	SampleRatio  float64
}

type Config struct {
	App       AppCfg
	Root      RootCfg
	Log       LogCfg
	Backend   BackendCfg
	Database  DBCfg
	Redis     RedisCfg
	RabbitMQ  MQCfg
	S3        S3Cfg
	Airtable  AirtableCfg
	Gateway   GatewayCfg
	Telemetry TelemetryCfg
}

func Load() (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	base := viper.New()
	base.SetConfigName("config")
	base.SetConfigType("yaml")
	base.AddConfigPath("./configs")
	base.AddConfigPath(".")
	base.AutomaticEnv()
	base.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	base.SetEnvPrefix("APP") // e.g. APP_APP_PORT -> app.port

	// First assign a default value (effective regardless of whether there is a file or not)
	setDefaults(base)

	// Read the file (if any)
	if err := base.ReadInConfig(); err == nil {
		// After finding the file, manually perform one expansion of ${ENV}, and then parse it.
		path := base.ConfigFileUsed()
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return parse(os.ExpandEnv(string(raw)))
	}

	// No files are also allowed, using only env + default values
	cfg := new(Config)
	if err := base.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse loads an already expanded yaml document on top of env + defaults.
func parse(doc string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewBufferString(doc)); err != nil {
		return nil, err
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	setDefaults(v)

	cfg := new(Config)
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "recordgraph")
	v.SetDefault("app.env", "debug")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 4003)
	v.SetDefault("root.apiBearerToken", "recordgraph")
	v.SetDefault("root.userBearerTokenPrefix", "sk-user-")
	v.SetDefault("root.secretPepper", "recordgraph-pepper")
	v.SetDefault("log.level", "info")
	v.SetDefault("backend.kind", "relational")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.maxOpen", 20)
	v.SetDefault("database.maxIdle", 5)
	v.SetDefault("database.autoMigrate", true)
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.bridgeTTLSec", 3600)
	v.SetDefault("rabbitmq.exchange", "record_events")
	v.SetDefault("s3.region", "auto")
	v.SetDefault("s3.usePathStyle", true)
	v.SetDefault("s3.presignExpireSec", 900)
	v.SetDefault("s3.exportPrefix", "exports")
	v.SetDefault("airtable.baseURL", "https://api.airtable.com/v0")
	v.SetDefault("airtable.timeoutSec", 30)
	v.SetDefault("gateway.concurrency", 8)
	v.SetDefault("telemetry.sampleRatio", 1.0)
}
