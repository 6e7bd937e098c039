package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name looked up in the working directory.
const FileName = "kopilka.yaml"

// Environment variables holding the API keys of the rate and quote providers.
const (
	EnvExchangeKey = "API_KEY_EXCHANGE"
	EnvStocksKey   = "API_KEY_STOCKS"
)

// DefaultRoundLimit is the round-up threshold used when none is configured.
const DefaultRoundLimit = 50

// Config represents the top-level kopilka.yaml configuration.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	User       UserSettings     `yaml:"user"`
	Investment InvestmentConfig `yaml:"investment"`
	Server     ServerConfig     `yaml:"server"`
	API        APIConfig        `yaml:"api"`
	Log        LogConfig        `yaml:"log"`
}

// DataConfig locates the operations export and the report output.
type DataConfig struct {
	Transactions string `yaml:"transactions"`
	Report       string `yaml:"report"`
}

// UserSettings selects which currencies and stocks the dashboard shows.
type UserSettings struct {
	Currencies []string `yaml:"currencies"`
	Stocks     []string `yaml:"stocks"`
}

// InvestmentConfig controls the round-up calculator.
type InvestmentConfig struct {
	RoundLimit int `yaml:"round_limit"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// APIConfig points at the external rate and quote providers.
type APIConfig struct {
	RatesURL  string        `yaml:"rates_url"`
	StocksURL string        `yaml:"stocks_url"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
	Timeout   time.Duration `yaml:"timeout"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Secrets carries credentials read from the environment, never from the YAML file.
type Secrets struct {
	ExchangeKey string
	StocksKey   string
}

// Load reads a kopilka.yaml file from disk. Unset fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Transactions: "data/operations.xlsx",
			Report:       "reports/report_by_category.xlsx",
		},
		User: UserSettings{
			Currencies: []string{"USD", "EUR"},
			Stocks:     []string{"AAPL", "AMZN", "GOOGL", "MSFT", "TSLA"},
		},
		Investment: InvestmentConfig{RoundLimit: DefaultRoundLimit},
		Server:     ServerConfig{Addr: ":8080"},
		API: APIConfig{
			RatesURL:  "https://api.apilayer.com/exchangerates_data/latest",
			StocksURL: "https://financialmodelingprep.com/api/v3/stock/list",
			CacheTTL:  time.Hour,
			Timeout:   10 * time.Second,
		},
		Log: LogConfig{Level: "warn", Format: "console"},
	}
}

// Validate reports every problem found in cfg at once.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Data.Transactions) == "" {
		problems = append(problems, "data.transactions must not be empty")
	}
	if c.Investment.RoundLimit <= 0 || c.Investment.RoundLimit >= 100 {
		problems = append(problems, fmt.Sprintf("investment.round_limit %d must be between 1 and 99", c.Investment.RoundLimit))
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q must be console or json", c.Log.Format))
	}
	if c.API.CacheTTL < 0 {
		problems = append(problems, "api.cache_ttl must not be negative")
	}

	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}

// LoadSecrets reads API keys from the environment after merging envFile
// (usually ".env") into it. A missing env file is not an error.
func LoadSecrets(envFile string) (Secrets, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Secrets{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	return Secrets{
		ExchangeKey: os.Getenv(EnvExchangeKey),
		StocksKey:   os.Getenv(EnvStocksKey),
	}, nil
}
