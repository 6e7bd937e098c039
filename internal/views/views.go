// Package views assembles the application's answers from the operations
// file, the analytics engine and the external rate and quote providers.
package views

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/kopilka-dev/kopilka/internal/analytics"
	"github.com/kopilka-dev/kopilka/internal/config"
	"github.com/kopilka-dev/kopilka/internal/export"
	"github.com/kopilka-dev/kopilka/internal/importer"
	"github.com/kopilka-dev/kopilka/internal/model"
)

// ServiceName labels the round-up investment answer.
const ServiceName = "Инвесткопилка"

// ReportDateLayouts are the accepted forms of a report reference date.
var ReportDateLayouts = []string{model.ISODateFormat, analytics.GreetingLayout}

// Loader reads the raw operations table.
type Loader interface {
	LoadFile(path string) (importer.Table, error)
}

// RatesFetcher returns per-RUB rates for the given currency codes.
type RatesFetcher interface {
	Fetch(ctx context.Context, codes []string) []analytics.RawRate
}

// QuotesFetcher returns the provider's USD stock quotes.
type QuotesFetcher interface {
	Fetch(ctx context.Context) []model.Quote
}

// Dashboard is the main page.
type Dashboard struct {
	Greeting        string              `json:"greeting"`
	Cards           []model.CardSummary `json:"cards"`
	TopTransactions []model.TopEntry    `json:"top_transactions"`
	CurrencyRates   []model.RateEntry   `json:"currency_rates"`
	StockPrices     []model.StockQuote  `json:"stock_prices"`
}

// Report is the category report. An empty report renders as {}.
type Report struct {
	model.CategoryReport
	Found bool
}

func (r Report) MarshalJSON() ([]byte, error) {
	if !r.Found {
		return []byte("{}"), nil
	}
	return json.Marshal(r.CategoryReport)
}

func (r *Report) UnmarshalJSON(data []byte) error {
	*r = Report{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("{}")) {
		return nil
	}
	if err := json.Unmarshal(data, &r.CategoryReport); err != nil {
		return err
	}
	r.Found = true
	return nil
}

// Investment is the round-up investment answer.
type Investment struct {
	Service    string          `json:"service"`
	Investment decimal.Decimal `json:"investment"`
}

// Application combines every page and service into one answer.
type Application struct {
	MainPage Dashboard  `json:"main_page"`
	Services Investment `json:"services"`
	Reports  Report     `json:"reports"`
}

// Options configures a Service.
type Options struct {
	TransactionsPath string
	User             config.UserSettings
	RoundLimit       int

	Loader   Loader          // defaults to importer.DefaultRegistry()
	Exporter export.Exporter // nil skips writing the report
	Rates    RatesFetcher    // nil yields no currency rates
	Quotes   QuotesFetcher   // nil yields no stock prices
	Now      func() time.Time
}

// Service builds views. Every method is total: problems are logged and
// the affected section comes back empty.
type Service struct {
	opts       Options
	log        zerolog.Logger
	engine     *analytics.Engine
	normalizer *importer.Normalizer
}

// NewService creates a Service logging through log.
func NewService(opts Options, log zerolog.Logger) *Service {
	if opts.Loader == nil {
		opts.Loader = importer.DefaultRegistry()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RoundLimit <= 0 {
		opts.RoundLimit = analytics.DefaultRoundLimit
	}
	return &Service{
		opts:       opts,
		log:        log,
		engine:     analytics.NewWithClock(log, opts.Now),
		normalizer: importer.NewNormalizer(log),
	}
}

// Transactions loads and normalizes the operations file.
func (s *Service) Transactions() []model.Transaction {
	table, err := s.opts.Loader.LoadFile(s.opts.TransactionsPath)
	if err != nil {
		s.log.Error().Err(err).Str("path", s.opts.TransactionsPath).Msg("loading operations")
		return nil
	}
	return s.normalizer.Normalize(table)
}

// Dashboard builds the main page for the timestamp at
// ("YYYY-MM-DD HH:MM:SS"); an empty at means now.
func (s *Service) Dashboard(ctx context.Context, at string) Dashboard {
	return s.dashboard(ctx, at, s.Transactions())
}

func (s *Service) dashboard(ctx context.Context, at string, txns []model.Transaction) Dashboard {
	if at == "" {
		at = s.opts.Now().Format(analytics.GreetingLayout)
	}

	var (
		raw    []analytics.RawRate
		quotes []model.Quote
	)
	g, gctx := errgroup.WithContext(ctx)
	if s.opts.Rates != nil {
		g.Go(func() error {
			raw = s.opts.Rates.Fetch(gctx, s.opts.User.Currencies)
			return nil
		})
	}
	if s.opts.Quotes != nil {
		g.Go(func() error {
			quotes = s.opts.Quotes.Fetch(gctx)
			return nil
		})
	}
	_ = g.Wait()

	rates, pivot := s.engine.InvertRates(raw)
	d := Dashboard{
		Greeting:        s.engine.GreetingAt(at),
		Cards:           s.engine.Cards(txns),
		TopTransactions: s.engine.Top(txns, analytics.TopN),
		CurrencyRates:   rates,
		StockPrices:     s.engine.ConvertStockPrices(quotes, s.opts.User.Stocks, pivot),
	}

	if len(d.Cards) == 0 {
		s.log.Warn().Msg("no card information")
		d.Cards = []model.CardSummary{}
	}
	if len(d.TopTransactions) == 0 {
		s.log.Warn().Msg("no top transactions")
		d.TopTransactions = []model.TopEntry{}
	}
	if len(d.CurrencyRates) == 0 {
		s.log.Warn().Msg("no currency rates")
		d.CurrencyRates = []model.RateEntry{}
	}
	if len(d.StockPrices) == 0 {
		s.log.Warn().Msg("no stock prices")
		d.StockPrices = []model.StockQuote{}
	}
	return d
}

// Report totals category spend over the trailing window ending at date
// ("YYYY-MM-DD"; empty means today). A non-empty selection is exported
// before it is reduced.
func (s *Service) Report(category, date string) Report {
	return s.report(category, date, s.Transactions())
}

func (s *Service) report(category, date string, txns []model.Transaction) Report {
	var ref time.Time
	if date != "" {
		var ok bool
		if ref, ok = parseReportDate(date); !ok {
			s.log.Error().Str("date", date).Msg("bad report date")
			return Report{}
		}
	}

	rows := s.engine.SpendingByCategory(txns, category, ref)
	export.IfNonEmpty(s.log, s.opts.Exporter, rows)

	rep, ok := analytics.CategoryTotal(rows)
	return Report{CategoryReport: rep, Found: ok}
}

func parseReportDate(s string) (time.Time, bool) {
	for _, layout := range ReportDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Investment computes the round-up savings for month ("YYYY-MM"). A
// non-positive limit uses the configured one.
func (s *Service) Investment(month string, limit int) Investment {
	return s.investment(month, limit, s.Transactions())
}

func (s *Service) investment(month string, limit int, txns []model.Transaction) Investment {
	if limit <= 0 {
		limit = s.opts.RoundLimit
	}
	return Investment{
		Service:    ServiceName,
		Investment: s.engine.Investment(month, analytics.InvestmentInputs(txns), limit),
	}
}

// ApplicationRequest carries the inputs of every page.
type ApplicationRequest struct {
	At       string
	Month    string
	Limit    int
	Category string
	Date     string
}

// Application builds every page from a single read of the operations file.
func (s *Service) Application(ctx context.Context, req ApplicationRequest) Application {
	txns := s.Transactions()
	return Application{
		MainPage: s.dashboard(ctx, req.At, txns),
		Services: s.investment(req.Month, req.Limit, txns),
		Reports:  s.report(req.Category, req.Date, txns),
	}
}
