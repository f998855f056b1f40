package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env             string            `yaml:"env" env-default:"local"`
	DSN             string            `yaml:"dsn" env-required:"true"`
	SessionSecret   string            `yaml:"session_secret" env-required:"true"`
	TokenSecret     string            `yaml:"token_secret" env-required:"true"`
	AccessTokenTTL  time.Duration     `yaml:"access_token_ttl" env-default:"15m"`
	RefreshTokenTTL time.Duration     `yaml:"refresh_token_ttl" env-default:"168h"`
	HTTP            HTTPConfig        `yaml:"http"`
	FileStorage     FileStorageConfig `yaml:"file_storage"`
	Redis           RedisConf         `yaml:"redis"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port" env-default:"8080"`
}

type FileStorageConfig struct {
	BaseDir string `yaml:"base_dir" env-default:"./uploads"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
