package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopilka-dev/kopilka/internal/logger"
	"github.com/kopilka-dev/kopilka/internal/model"
	"github.com/kopilka-dev/kopilka/internal/views"
)

type fakeViewer struct {
	at       string
	category string
	date     string
	month    string
	limit    int
	report   views.Report
	panics   bool
}

func (f *fakeViewer) Dashboard(_ context.Context, at string) views.Dashboard {
	if f.panics {
		panic("boom")
	}
	f.at = at
	return views.Dashboard{
		Greeting:        "Добрый день",
		Cards:           []model.CardSummary{},
		TopTransactions: []model.TopEntry{},
		CurrencyRates:   []model.RateEntry{{Currency: "USD", Rate: decimal.RequireFromString("106.46")}},
		StockPrices:     []model.StockQuote{},
	}
}

func (f *fakeViewer) Report(category, date string) views.Report {
	f.category, f.date = category, date
	return f.report
}

func (f *fakeViewer) Investment(month string, limit int) views.Investment {
	f.month, f.limit = month, limit
	return views.Investment{Service: views.ServiceName, Investment: decimal.RequireFromString("150.5")}
}

func (f *fakeViewer) Application(ctx context.Context, req views.ApplicationRequest) views.Application {
	f.limit = req.Limit
	return views.Application{
		MainPage: f.Dashboard(ctx, req.At),
		Services: f.Investment(req.Month, req.Limit),
		Reports:  f.Report(req.Category, req.Date),
	}
}

func newTestRouter(t *testing.T, v Viewer) (http.Handler, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewRouter(v, logger.NewWithWriter(&buf)), &buf
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t, &fakeViewer{})
	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDashboard(t *testing.T) {
	v := &fakeViewer{}
	h, logs := newTestRouter(t, v)

	rec := get(t, h, "/api/dashboard?at="+url.QueryEscape("2021-12-31 16:44:00"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2021-12-31 16:44:00", v.at)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"greeting": "Добрый день",
		"cards": [],
		"top_transactions": [],
		"currency_rates": [{"currency":"USD","rate":106.46}],
		"stock_prices": []
	}`, rec.Body.String())

	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Contains(t, logs.String(), `"path":"/api/dashboard"`)
	assert.Contains(t, logs.String(), `"status":200`)
}

func TestReport(t *testing.T) {
	v := &fakeViewer{report: views.Report{
		CategoryReport: model.CategoryReport{Category: "Перевод", TotalSpent: decimal.RequireFromString("4010.00")},
		Found:          true,
	}}
	h, _ := newTestRouter(t, v)

	rec := get(t, h, "/api/report?category="+url.QueryEscape("Перевод")+"&date=2021-12-31")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Перевод", v.category)
	assert.Equal(t, "2021-12-31", v.date)
	assert.JSONEq(t, `{"category":"Перевод","total_spent":4010}`, rec.Body.String())
}

func TestReport_Empty(t *testing.T) {
	h, _ := newTestRouter(t, &fakeViewer{})
	rec := get(t, h, "/api/report?category=x")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestReport_MissingCategory(t *testing.T) {
	h, _ := newTestRouter(t, &fakeViewer{})
	rec := get(t, h, "/api/report")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"category is required"}`, rec.Body.String())
}

func TestInvestment(t *testing.T) {
	v := &fakeViewer{}
	h, _ := newTestRouter(t, v)

	rec := get(t, h, "/api/investment?month=2021-12&limit=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2021-12", v.month)
	assert.Equal(t, 10, v.limit)
	assert.JSONEq(t, `{"service":"Инвесткопилка","investment":150.5}`, rec.Body.String())

	rec = get(t, h, "/api/investment?month=2021-12")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, v.limit)
}

func TestInvestment_BadInput(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"missing month", "/api/investment"},
		{"non-numeric limit", "/api/investment?month=2021-12&limit=abc"},
		{"negative limit", "/api/investment?month=2021-12&limit=-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestRouter(t, &fakeViewer{})
			rec := get(t, h, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestApplication(t *testing.T) {
	v := &fakeViewer{}
	h, _ := newTestRouter(t, v)

	rec := get(t, h, "/api/application?month=2021-12&limit=50&category=x")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, v.limit)

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got, "main_page")
	assert.Contains(t, got, "services")
	assert.JSONEq(t, `{}`, string(got["reports"]))
}

func TestApplication_RequiresMonthAndCategory(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"/api/application?category=x", `{"error":"month is required"}`},
		{"/api/application?month=2021-12", `{"error":"category is required"}`},
		{"/api/application", `{"error":"month is required"}`},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			v := &fakeViewer{}
			h, _ := newTestRouter(t, v)
			rec := get(t, h, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
			assert.Empty(t, v.month)
		})
	}
}

func TestRequestIDPropagated(t *testing.T) {
	h, logs := newTestRouter(t, &fakeViewer{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Contains(t, logs.String(), `"request_id":"abc-123"`)
}

func TestRecoverer(t *testing.T) {
	h, _ := newTestRouter(t, &fakeViewer{panics: true})
	rec := get(t, h, "/api/dashboard")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNotFound(t *testing.T) {
	h, _ := newTestRouter(t, &fakeViewer{})
	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/unknown").Code)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ListenAndServe(ctx, "127.0.0.1:0", http.NotFoundHandler(), logger.NewWithWriter(io.Discard))
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
