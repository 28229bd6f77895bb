package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vincentino1/account-service/internal/flagx"
	"github.com/vincentino1/account-service/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "1h" and integer nanoseconds are accepted.
// PurgeInterval and DBSSL are pointers because their zero values are
// meaningful.
type JsonConfig struct {
	Env                string          `json:"env"`
	HTTPAddr           string          `json:"http_addr"`
	GRPCAddr           string          `json:"grpc_addr"`
	DatabaseDSN        string          `json:"database_dsn"`
	DBHost             string          `json:"db_host"`
	DBPort             int             `json:"db_port"`
	DBName             string          `json:"db_name"`
	DBUser             string          `json:"db_user"`
	DBPassword         string          `json:"db_password"`
	DBSSL              *bool           `json:"db_ssl"`
	SecretKey          string          `json:"secret_key"`
	AccessTokenTTL     timex.Duration  `json:"access_token_ttl"`
	BcryptCost         int             `json:"bcrypt_cost"`
	RedisURL           string          `json:"redis_url"`
	RevocationCacheTTL timex.Duration  `json:"revocation_cache_ttl"`
	PurgeInterval      *timex.Duration `json:"purge_interval"`
	AllowedOrigins     []string        `json:"allowed_origins"`
	LogFormat          string          `json:"log_format"`
}

// parseJSON overlays values from the file named by -c/-config. Keys absent
// from the file leave the current values untouched.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&config.Env, c.Env)
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.DBHost, c.DBHost)
	setString(&config.DBName, c.DBName)
	setString(&config.DBUser, c.DBUser)
	setString(&config.DBPassword, c.DBPassword)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.LogFormat, c.LogFormat)

	if c.AccessTokenTTL.Duration != 0 {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RevocationCacheTTL.Duration != 0 {
		config.RevocationCacheTTL = c.RevocationCacheTTL.Duration
	}
	if c.PurgeInterval != nil {
		config.PurgeInterval = c.PurgeInterval.Duration
	}
	if c.DBPort != 0 {
		config.DBPort = c.DBPort
	}
	if c.DBSSL != nil {
		config.DBSSL = *c.DBSSL
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
