// Package amfi provides a client for the AMFI daily NAV table
package amfi

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/sipfolio/internal/common"
	"github.com/bobmcallan/sipfolio/internal/interfaces"
	"github.com/bobmcallan/sipfolio/internal/models"
)

const (
	DefaultBaseURL   = "https://www.amfiindia.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 2 // requests per second

	navAllPath = "/spages/NAVAll.txt"
)

// ErrNotFound is returned when an ISIN is absent from the published table.
var ErrNotFound = errors.New("isin not in NAV table")

// Client downloads the AMFI NAV table once per process and serves
// lookups from it. AMFI publishes one flat file for every scheme, so a
// single download covers all ISINs for the run.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter

	tableOnce sync.Once
	table     map[string]models.NAVQuote
	tableErr  error
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new AMFI client. The NAV table is public, no key needed.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("AMFI API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// LookupNAV returns the latest published NAV for an ISIN. The first call
// downloads and parses the full table; later calls hit the in-memory copy.
// A failed download is not retried within the process lifetime.
func (c *Client) LookupNAV(ctx context.Context, isin string) (*models.NAVQuote, error) {
	if err := c.ensureTable(ctx); err != nil {
		return nil, err
	}

	quote, ok := c.table[normalizeISIN(isin)]
	if !ok {
		return nil, fmt.Errorf("amfi: %s: %w", isin, ErrNotFound)
	}

	return &quote, nil
}

func (c *Client) ensureTable(ctx context.Context) error {
	c.tableOnce.Do(func() {
		c.table, c.tableErr = c.downloadTable(ctx)
	})
	return c.tableErr
}

// downloadTable performs the rate-limited GET for NAVAll.txt
func (c *Client) downloadTable(ctx context.Context) (map[string]models.NAVQuote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + navAllPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", reqURL).Msg("AMFI NAV table request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   navAllPath,
		}
	}

	table, err := parseNAVTable(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Int("schemes", len(table)).Msg("AMFI NAV table parsed")

	return table, nil
}

// parseNAVTable reads the semicolon-delimited AMFI file. Each scheme line is
//
//	Code;ISIN Div Payout/Growth;ISIN Div Reinvestment;Scheme Name;Date;NAV
//
// interleaved with category headers and blank lines, which carry no
// semicolons or no numeric NAV and are skipped. A scheme is indexed under
// both ISIN columns when present.
func parseNAVTable(r io.Reader) (map[string]models.NAVQuote, error) {
	table := make(map[string]models.NAVQuote)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, ";") {
			continue
		}

		parts := strings.Split(line, ";")
		if len(parts) < 6 {
			continue
		}

		nav, err := decimal.NewFromString(strings.TrimSpace(parts[5]))
		if err != nil {
			// Header row or a scheme without a published NAV ("N.A.").
			continue
		}

		quote := models.NAVQuote{
			SchemeName: strings.TrimSpace(parts[3]),
			NAV:        nav,
			Date:       parseNAVDate(parts[4]),
		}

		for _, raw := range parts[1:3] {
			isin := normalizeISIN(raw)
			if isin == "" || isin == "-" {
				continue
			}
			quote.ISIN = isin
			table[isin] = quote
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read NAV table: %w", err)
	}

	return table, nil
}

// parseNAVDate accepts the two date forms AMFI has published. Unparseable
// dates leave the quote undated rather than discarding the NAV.
func parseNAVDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"02-Jan-2006", models.DateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func normalizeISIN(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Ensure Client implements PriceSource
var _ interfaces.PriceSource = (*Client)(nil)
