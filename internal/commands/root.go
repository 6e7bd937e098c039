package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kopilka-dev/kopilka/internal/buildinfo"
	"github.com/kopilka-dev/kopilka/internal/config"
	"github.com/kopilka-dev/kopilka/internal/export"
	"github.com/kopilka-dev/kopilka/internal/external"
	"github.com/kopilka-dev/kopilka/internal/logger"
	"github.com/kopilka-dev/kopilka/internal/views"
)

// app holds what the subcommands share once the root command has loaded
// the configuration.
type app struct {
	configPath string
	envFile    string

	cfg     *config.Config
	baseDir string
	secrets config.Secrets
	log     zerolog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{log: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:     "kopilka",
		Short:   "Spending analytics and round-up savings over bank operation exports",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.FileName, "config file")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "file with API keys")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newDashboardCommand(a))
	rootCmd.AddCommand(newReportCommand(a))
	rootCmd.AddCommand(newInvestCommand(a))
	rootCmd.AddCommand(newAllCommand(a))
	rootCmd.AddCommand(newServeCommand(a))

	return rootCmd
}

// load reads the config file, secrets and builds the logger. A missing
// config file means defaults.
func (a *app) load(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
		a.baseDir = "."
	case err != nil:
		return err
	default:
		a.baseDir = filepath.Dir(a.configPath)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.log, err = logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Out: stderr})
	if err != nil {
		return err
	}

	a.secrets, err = config.LoadSecrets(a.envFile)
	if err != nil {
		return err
	}
	if a.secrets.ExchangeKey == "" {
		a.log.Warn().Str("env", config.EnvExchangeKey).Msg("no currency rates API key")
	}
	if a.secrets.StocksKey == "" {
		a.log.Warn().Str("env", config.EnvStocksKey).Msg("no stock quotes API key")
	}
	return nil
}

// resolve interprets relative paths against the config file's directory.
func (a *app) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.baseDir, path)
}

// service wires the views to the configured files and providers.
func (a *app) service() *views.Service {
	api := a.cfg.API
	httpClient := &http.Client{Timeout: api.Timeout}

	rates := external.NewRatesClient(external.Options{
		BaseURL:    api.RatesURL,
		APIKey:     a.secrets.ExchangeKey,
		CacheTTL:   api.CacheTTL,
		HTTPClient: httpClient,
	}, logger.Component(a.log, "rates"))

	quotes := external.NewStocksClient(external.Options{
		BaseURL:    api.StocksURL,
		APIKey:     a.secrets.StocksKey,
		CacheTTL:   api.CacheTTL,
		HTTPClient: httpClient,
	}, logger.Component(a.log, "stocks"))

	return views.NewService(views.Options{
		TransactionsPath: a.resolve(a.cfg.Data.Transactions),
		User:             a.cfg.User,
		RoundLimit:       a.cfg.Investment.RoundLimit,
		Exporter:         &export.FileExporter{Path: a.resolve(a.cfg.Data.Report)},
		Rates:            rates,
		Quotes:           quotes,
	}, logger.Component(a.log, "views"))
}

// printJSON writes v as indented JSON with non-ASCII text left readable.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
