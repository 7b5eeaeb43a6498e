package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "COMANDA"

// Environment variable names, kept as constants so tests can reference them.
const (
	EnvAppEnv       = "COMANDA_APP_ENV"
	EnvLogLevel     = "COMANDA_LOG_LEVEL"
	EnvLogWarnStack = "COMANDA_LOG_WARN_STACK"
	EnvDataDir      = "COMANDA_DATA_DIR"
	EnvMenuFile     = "COMANDA_MENU_FILE"
	EnvSalesFile    = "COMANDA_SALES_FILE"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COMANDA_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"COMANDA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COMANDA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig locates the flat-file stores on disk.
type StorageConfig struct {
	DataDir   string `envconfig:"COMANDA_DATA_DIR" default:"."`
	MenuFile  string `envconfig:"COMANDA_MENU_FILE" default:"menu_data.txt"`
	SalesFile string `envconfig:"COMANDA_SALES_FILE" default:"sales_data.txt"`
}

// MenuPath returns the full path of the menu store file.
func (s StorageConfig) MenuPath() string {
	return filepath.Join(s.DataDir, s.MenuFile)
}

// SalesPath returns the full path of the sales store file.
func (s StorageConfig) SalesPath() string {
	return filepath.Join(s.DataDir, s.SalesFile)
}
