package sportsdata

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/golf-ingest/internal/platform/cache"
	"github.com/riskibarqy/golf-ingest/internal/platform/logging"
	"github.com/riskibarqy/golf-ingest/internal/platform/resilience"
	"github.com/riskibarqy/golf-ingest/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL = "https://api.sportsdata.io/golf/v2/json"
	apiKeyHeader   = "Ocp-Apim-Subscription-Key"
	maxBodyBytes   = 16 << 20
)

var errSportsDataTransient = crerr.New("sportsdata transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	// RetryBackoff is the base delay between attempts; attempt n waits n*RetryBackoff.
	RetryBackoff time.Duration
	// CatalogCacheTTL keeps /Players and /Tournaments responses across runs
	// in the same process. Zero disables the cache.
	CatalogCacheTTL time.Duration
}

// Client reads players, tournaments and leaderboards from the SportsData.io golf API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	flight       resilience.SingleFlight[[]byte]
	catalog      *cache.Store[[]byte]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	var catalog *cache.Store[[]byte]
	if cfg.CatalogCacheTTL > 0 {
		catalog = cache.NewStore[[]byte](cfg.CatalogCacheTTL)
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		logger:       logger,
		breaker:      resilience.NewCircuitBreaker("sportsdata", cfg.CircuitBreaker, isSportsDataCircuitFailure, logger),
		catalog:      catalog,
	}
}

func (c *Client) FetchPlayers(ctx context.Context) ([]usecase.ExternalPlayer, error) {
	var payload []playerDTO
	if err := c.doJSON(ctx, "/Players", &payload); err != nil {
		return nil, fmt.Errorf("fetch players: %w", err)
	}

	out := make([]usecase.ExternalPlayer, 0, len(payload))
	for _, item := range payload {
		if item.PlayerID <= 0 {
			c.logger.WarnContext(ctx, "skip player without id", "name", strings.TrimSpace(item.FirstName+" "+item.LastName))
			continue
		}
		out = append(out, item.toExternal())
	}
	return out, nil
}

func (c *Client) FetchTournaments(ctx context.Context, year int) ([]usecase.ExternalTournament, error) {
	if year <= 0 {
		return nil, fmt.Errorf("%w: year must be greater than zero", usecase.ErrInvalidInput)
	}

	var payload []tournamentDTO
	if err := c.doJSON(ctx, "/Tournaments/"+strconv.Itoa(year), &payload); err != nil {
		return nil, fmt.Errorf("fetch tournaments year=%d: %w", year, err)
	}

	out := make([]usecase.ExternalTournament, 0, len(payload))
	for _, item := range payload {
		if item.TournamentID <= 0 {
			continue
		}
		out = append(out, item.toExternal())
	}
	return out, nil
}

func (c *Client) FetchLeaderboard(ctx context.Context, tournamentID int64, final bool) (usecase.ExternalLeaderboard, error) {
	if tournamentID <= 0 {
		return usecase.ExternalLeaderboard{}, fmt.Errorf("%w: tournament id must be greater than zero", usecase.ErrInvalidInput)
	}

	path := "/Leaderboard/"
	if final {
		path = "/LeaderboardFinal/"
	}
	path += strconv.FormatInt(tournamentID, 10)

	var payload leaderboardDTO
	if err := c.doJSON(ctx, path, &payload); err != nil {
		return usecase.ExternalLeaderboard{}, fmt.Errorf("fetch leaderboard tournament_id=%d: %w", tournamentID, err)
	}
	return payload.toExternal(), nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	var (
		raw []byte
		err error
	)
	if c.catalog != nil && isCatalogPath(path) {
		raw, err = c.catalog.GetOrLoad(ctx, path, func(ctx context.Context) ([]byte, error) {
			return c.fetch(ctx, path)
		})
	} else {
		raw, err = c.fetch(ctx, path)
	}
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

// isCatalogPath reports whether path serves slow-moving reference data.
// Leaderboards are never cached.
func isCatalogPath(path string) bool {
	return path == "/Players" || strings.HasPrefix(path, "/Tournaments/")
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	fullURL := c.baseURL + path

	out, err := c.breaker.Execute(func() (any, error) {
		raw, _, reqErr := c.flight.Do(path, func() ([]byte, error) {
			return c.executeRequest(ctx, fullURL)
		})
		return raw, reqErr
	})
	if err != nil {
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "sportsdata circuit breaker rejected request", "path", path, "state", c.breaker.State())
			return nil, fmt.Errorf("%w: golf data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set(apiKeyHeader, c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: send request: %s", errSportsDataTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errSportsDataTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errSportsDataTransient, resp.StatusCode, sanitizeSensitiveText(abbreviateBody(raw), c.apiKey))
			default:
				c.logger.WarnContext(ctx, "sportsdata request rejected", "url", redactAPIURL(fullURL), "status", resp.StatusCode)
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, sanitizeSensitiveText(abbreviateBody(raw), c.apiKey))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "sportsdata request failed", "url", redactAPIURL(fullURL), "attempts", c.maxRetries+1, "error", lastErr)
	return nil, lastErr
}

func isSportsDataCircuitFailure(err error) bool {
	return err != nil && stderrors.Is(err, errSportsDataTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" || apiKey == "" {
		return value
	}
	return strings.ReplaceAll(value, apiKey, "REDACTED")
}

// redactAPIURL masks the key query parameter the provider also accepts.
func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if query.Has("key") {
		query.Set("key", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
