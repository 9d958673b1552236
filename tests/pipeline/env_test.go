// Package pipeline exercises the full valuation flow: history CSVs in,
// snapshot and chart artifacts out, against a stubbed NAV endpoint.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/sipfolio/internal/app"
	"github.com/bobmcallan/sipfolio/internal/services/pricing"
)

// fixedClock pins every run in this package to one instant so artifacts
// come out byte-identical across runs.
var fixedClock = time.Date(2026, 8, 21, 6, 0, 0, 0, time.UTC)

const navTable = `Scheme Code;ISIN Div Payout/ ISIN Growth;ISIN Div Reinvestment;Scheme Name;Date;Net Asset Value

Kotak Mahindra Mutual Fund

119551;INF174K01LC6;INF174K01LD4;Kotak Equity Arbitrage Fund - Growth;21-Aug-2026;950.00
119552;INF109K015K4;-;ICICI Prudential Multi-Asset Fund - Growth;21-Aug-2026;772.4216
`

// env is one self-contained run directory plus a stubbed AMFI endpoint.
type env struct {
	t          *testing.T
	historyDir string
	dataDir    string
	configPath string
}

func newEnv(t *testing.T, navStatus int, navBody string) *env {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if navStatus != http.StatusOK {
			w.WriteHeader(navStatus)
			return
		}
		w.Write([]byte(navBody))
	}))
	t.Cleanup(srv.Close)

	base := t.TempDir()
	e := &env{
		t:          t,
		historyDir: filepath.Join(base, "history"),
		dataDir:    filepath.Join(base, "data"),
		configPath: filepath.Join(base, "sipfolio.toml"),
	}
	require.NoError(t, os.MkdirAll(e.historyDir, 0755))
	require.NoError(t, os.MkdirAll(e.dataDir, 0755))

	config := fmt.Sprintf(`environment = "test"

[history]
path = %q

[storage.file]
path = %q

[clients.amfi]
base_url = %q
timeout = "5s"
rate_limit = 50
max_concurrent = 4
lookup_timeout = "5s"

[goal]
target_amount = 200000
monthly_contribution = 10000
currency = "INR"

[output]
chart = true

[logging]
level = "error"
`, e.historyDir, e.dataDir, srv.URL)
	require.NoError(t, os.WriteFile(e.configPath, []byte(config), 0644))

	return e
}

// writeHistory drops a CSV into the history directory.
func (e *env) writeHistory(name, content string) {
	e.t.Helper()
	require.NoError(e.t, os.WriteFile(filepath.Join(e.historyDir, name), []byte(content), 0644))
}

// writeData drops a raw artifact into the data directory, used to pre-seed
// the NAV cache.
func (e *env) writeData(name, content string) {
	e.t.Helper()
	require.NoError(e.t, os.WriteFile(filepath.Join(e.dataDir, name), []byte(content), 0644))
}

// run executes one full valuation pass on the pinned clock.
func (e *env) run() {
	e.t.Helper()

	a, err := app.NewApp(e.configPath)
	require.NoError(e.t, err, "NewApp failed")
	defer a.Close()

	ps, ok := a.PricingService.(*pricing.Service)
	require.True(e.t, ok, "pricing service is %T", a.PricingService)
	ps.SetClock(func() time.Time { return fixedClock })

	require.NoError(e.t, a.Run(context.Background()), "Run failed")
}

// readData reads an artifact from the data directory.
func (e *env) readData(name string) []byte {
	e.t.Helper()
	data, err := os.ReadFile(filepath.Join(e.dataDir, name))
	require.NoError(e.t, err, "artifact %s missing", name)
	return data
}
