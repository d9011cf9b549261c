package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	. "github.com/weberc2/blockfs/pkg/types"
	"gopkg.in/yaml.v2"
)

const (
	envVarPrefix = "BLOCKFS"
	appName      = "blockfs"

	deviceFile     = "file"
	deviceS3       = "s3"
	devicePostgres = "postgres"
)

// Config is read from a YAML file and then overridden by `BLOCKFS_*`
// environment variables. Postgres connection settings come from the usual
// `PG_*` variables.
type Config struct {
	Device     string `envconfig:"DEVICE"      yaml:"device"`
	Image      string `envconfig:"IMAGE"       yaml:"image"`
	BlockCount Block  `envconfig:"BLOCK_COUNT" yaml:"blockCount"`
	S3Bucket   string `envconfig:"S3_BUCKET"   yaml:"s3Bucket"`
	S3Region   string `envconfig:"S3_REGION"   yaml:"s3Region"`
	Volume     string `envconfig:"VOLUME"      yaml:"volume"`
	Addr       string `envconfig:"ADDR"        yaml:"addr"`
	LogLevel   string `envconfig:"LOG_LEVEL"   yaml:"logLevel"`
	LogFormat  string `envconfig:"LOG_FORMAT"  yaml:"logFormat"`
}

func DefaultConfig() Config {
	return Config{
		Device:     deviceFile,
		Image:      appName + ".img",
		BlockCount: 256,
		S3Region:   "us-east-1",
		Volume:     "default",
		Addr:       "127.0.0.1:8080",
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

func LoadConfig() (*Config, error) {
	configFile := os.Getenv(envVarPrefix + "_CONFIG_FILE")
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating config file: %w", err)
		}
		configFile = filepath.Join(home, ".config", appName+".yaml")
	}

	c := DefaultConfig()
	data, err := os.ReadFile(configFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshaling config file: %w", err)
	}

	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	return &c, nil
}

func (c *Config) Validate() error {
	switch c.Device {
	case deviceFile, deviceS3, devicePostgres:
	default:
		return fmt.Errorf(
			"unsupported device `%s`; wanted one of `%s`, `%s`, `%s`",
			c.Device,
			deviceFile,
			deviceS3,
			devicePostgres,
		)
	}

	if y, e := func() (string, string) {
		if c.Device == deviceFile && c.Image == "" {
			return "image", "IMAGE"
		}
		if c.Device == deviceS3 && c.S3Bucket == "" {
			return "s3Bucket", "S3_BUCKET"
		}
		if c.Device == deviceS3 && c.S3Region == "" {
			return "s3Region", "S3_REGION"
		}
		if c.Device != deviceFile && c.Volume == "" {
			return "volume", "VOLUME"
		}
		if c.Addr == "" {
			return "addr", "ADDR"
		}
		return "", ""
	}(); y != "" {
		return fmt.Errorf(
			"missing required configuration: %s / %s_%s",
			y,
			envVarPrefix,
			e,
		)
	}

	if c.BlockCount <= FirstDataBlock {
		return fmt.Errorf(
			"block count `%d` must be greater than `%d`",
			c.BlockCount,
			FirstDataBlock,
		)
	}
	return nil
}
