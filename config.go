package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit               string        `yaml:"git_commit" envconfig:"DLAP_GIT_COMMIT"`
	GitTag                  string        `yaml:"git_tag" envconfig:"DLAP_GIT_TAG"`
	BuildTime               string        `yaml:"build_time" envconfig:"DLAP_BUILD_TIME"`
	IsProduction            bool          `yaml:"is_production" envconfig:"DLAP_IS_PRODUCTION"`
	LogLevel                zapcore.Level `yaml:"log_level" envconfig:"DLAP_LOG_LEVEL"`
	LogFolder               string        `yaml:"log_folder" envconfig:"DLAP_LOG_FOLDER"`
	LogMaxSize              int           `yaml:"log_max_size" envconfig:"DLAP_LOG_MAX_SIZE"`
	OpsEndpointsEnable      bool          `yaml:"ops_endpoints_enable" envconfig:"DLAP_OPS_ENDPOINTS_ENABLE"`
	ProfilerEndpointsEnable bool          `yaml:"profiler_endpoints_enable" envconfig:"DLAP_PROFILER_ENDPOINTS_ENABLE"`
	Server                  ServerConfig  `yaml:"server"`
	Library                 LibraryConfig `yaml:"library"`
	Export                  ExportConfig  `yaml:"export"`
	Redis                   RedisConfig   `yaml:"redis"`
	BoltDB                  BoltDBConfig  `yaml:"boltdb"`
	SQLite                  SQLiteConfig  `yaml:"sqlite"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"DLAP_SERVER_HOST"`
	Port            string        `yaml:"port" envconfig:"DLAP_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"DLAP_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"DLAP_SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"DLAP_SERVER_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"DLAP_SERVER_SHUTDOWN_TIMEOUT"`
	RateLimit       float64       `yaml:"rate_limit" envconfig:"DLAP_SERVER_RATE_LIMIT"` // Requests per second on public endpoints, 0 disables
	RateBurst       int           `yaml:"rate_burst" envconfig:"DLAP_SERVER_RATE_BURST"`
}

type LibraryConfig struct {
	LoanPeriodDays int    `yaml:"loan_period_days" envconfig:"DLAP_LIBRARY_LOAN_PERIOD_DAYS"`
	SeedFile       string `yaml:"seed_file" envconfig:"DLAP_LIBRARY_SEED_FILE"`
}

type ExportConfig struct {
	Folder string `yaml:"folder" envconfig:"DLAP_EXPORT_FOLDER"`
}

type RedisConfig struct {
	Enable        bool          `yaml:"enable" envconfig:"DLAP_REDIS_ENABLE"`
	Host          string        `yaml:"host" envconfig:"DLAP_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"DLAP_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"DLAP_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"DLAP_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"DLAP_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"DLAP_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"DLAP_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"DLAP_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"DLAP_REDIS_PASSWORD" json:"-"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"DLAP_REDIS_DATABASE_INDEX"`
}

type BoltDBConfig struct {
	Enable     bool          `yaml:"enable" envconfig:"DLAP_BOLTDB_ENABLE"`
	FilePath   string        `yaml:"filepath" envconfig:"DLAP_BOLTDB_FILE_PATH"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"DLAP_BOLTDB_TIMEOUT"`
	BucketName string        `yaml:"bucket_name" envconfig:"DLAP_BOLTDB_BUCKET_NAME"`
}

type SQLiteConfig struct {
	Enable   bool   `yaml:"enable" envconfig:"DLAP_SQLITE_ENABLE"`
	FilePath string `yaml:"filepath" envconfig:"DLAP_SQLITE_FILE_PATH"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and provides an instance of the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	if config.Redis.Enable && (len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0) {
		return errors.New("make sure to set valid redis address and port in configuration file")
	}

	if config.BoltDB.Enable && (len(config.BoltDB.FilePath) == 0 || len(config.BoltDB.BucketName) == 0) {
		return errors.New("make sure to set valid boltdb file path and bucket name in configuration file")
	}

	if config.SQLite.Enable && len(config.SQLite.FilePath) == 0 {
		return errors.New("make sure to set valid sqlite file path in configuration file")
	}

	if config.Server.RateLimit > 0 && config.Server.RateBurst <= 0 {
		config.Server.RateBurst = int(config.Server.RateLimit) + 1
	}

	if config.Library.LoanPeriodDays <= 0 {
		config.Library.LoanPeriodDays = DefaultLoanPeriodDays
	}

	if len(config.LogFolder) == 0 {
		config.LogFolder = "./logs"
	}

	if config.LogMaxSize <= 0 {
		config.LogMaxSize = 10
	}

	if config.Server.ShutdownTimeout <= 0 {
		config.Server.ShutdownTimeout = 30 * time.Second
	}

	if config.Server.RequestTimeout <= 0 {
		config.Server.RequestTimeout = 15 * time.Second
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data. The dotenv file is optional.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile("./config.yml")
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration.
	err = godotenv.Load("./config.env")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `DLAP`.
	err = LoadConfigEnvs("DLAP", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
