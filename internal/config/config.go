package config

import (
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	IsDebug  *bool  `yaml:"is_debug" env:"OCPP_DEBUG"`
	TimeZone string `yaml:"time_zone" env:"OCPP_TIME_ZONE" env-default:"UTC"`
	Listen   struct {
		Type     string `yaml:"type" env-default:"port"`
		BindIP   string `yaml:"bind_ip" env-default:"0.0.0.0"`
		Port     string `yaml:"port" env:"OCPP_PORT" env-default:"5000"`
		TLS      bool   `yaml:"tls_enabled" env-default:"false"`
		CertFile string `yaml:"cert_file" env-default:""`
		KeyFile  string `yaml:"key_file" env-default:""`
	} `yaml:"listen"`
	Api struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"5001"`
	} `yaml:"api"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		BindIP  string `yaml:"bind_ip" env-default:"0.0.0.0"`
		Port    string `yaml:"port" env-default:"5002"`
	} `yaml:"metrics"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:""`
		Password string `yaml:"password" env:"OCPP_MONGO_PASSWORD" env-default:""`
		Database string `yaml:"database" env-default:"ocpp"`
	} `yaml:"mongo"`
	Signing struct {
		Policy        string `yaml:"policy" env-default:"all"`
		RequireSigned bool   `yaml:"require_signed" env-default:"false"`
		TrustedKeys   string `yaml:"trusted_keys" env-default:""`
	} `yaml:"signing"`
	Ocpp struct {
		HeartbeatInterval uint `yaml:"heartbeat_interval" env-default:"300"`
		CallTimeout       int  `yaml:"call_timeout" env-default:"30"`
	} `yaml:"ocpp"`
}

func (c *Config) Debug() bool {
	return c.IsDebug != nil && *c.IsDebug
}

var instance *Config
var once sync.Once

// GetConfig reads path once; later calls return the same instance.
func GetConfig(path string) (*Config, error) {
	var err error
	once.Do(func() {
		log.Info("reading config from ", path)
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			log.Info(desc)
			err = errors.Annotatef(err, "reading %s", path)
			instance = nil
		}
	})
	if instance == nil && err == nil {
		err = errors.New("configuration is not available")
	}
	return instance, err
}
