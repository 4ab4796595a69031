package postgrest

import (
	"bytes"
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
	"github.com/riskibarqy/golf-ingest/internal/domain/storage"
	"github.com/riskibarqy/golf-ingest/internal/platform/logging"
	"github.com/riskibarqy/golf-ingest/internal/platform/resilience"
	"github.com/riskibarqy/golf-ingest/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBatchSize = 100
	maxBodyBytes     = 4 << 20
)

var errPostgRESTTransient = crerr.New("postgrest transient failure")

// StatusError is a non-2xx answer from PostgREST that retrying will not fix.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("postgrest status=%d body=%s", e.StatusCode, e.Body)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	BatchSize      int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client writes rows to a Supabase PostgREST endpoint. Conflicting rows are
// resolved by the server according to each table's resolution.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	maxRetries   int
	batchSize    int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	now          func() time.Time
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid SUPABASE_URL")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, crerr.New("SUPABASE_KEY is required")
	}

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
		httpClient.Timeout = 15 * time.Second
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		maxRetries:   max(cfg.MaxRetries, 0),
		batchSize:    batchSize,
		retryBackoff: backoff,
		logger:       logger,
		breaker:      resilience.NewCircuitBreaker("postgrest", cfg.CircuitBreaker, isPostgRESTCircuitFailure, logger),
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

// insertRows posts rows in batches. A batch the server rejects is replayed
// row by row so one bad row only fails itself; keys identify rows in logs.
func insertRows[T any](ctx context.Context, c *Client, table storage.Table, rows []T, keys []string) (storage.Result, error) {
	var out storage.Result
	for start := 0; start < len(rows); start += c.batchSize {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		end := min(start+c.batchSize, len(rows))

		res, err := postBatch(ctx, c, table, rows[start:end])
		if err == nil {
			out.Add(res)
			continue
		}
		if stop := c.fatalWriteError(err); stop != nil {
			return out, stop
		}

		var statusErr *StatusError
		if !stderrors.As(err, &statusErr) || !isRowLevelStatus(statusErr.StatusCode) {
			c.logger.WarnContext(ctx, "postgrest batch failed", "table", table.Name, "rows", end-start, "error", err)
			out.Failed += end - start
			continue
		}

		c.logger.WarnContext(ctx, "postgrest batch rejected, retrying row by row",
			"table", table.Name,
			"rows", end-start,
			"status", statusErr.StatusCode,
		)
		for idx := start; idx < end; idx++ {
			res, err := postBatch(ctx, c, table, rows[idx:idx+1])
			if err == nil {
				out.Add(res)
				continue
			}
			if stop := c.fatalWriteError(err); stop != nil {
				return out, stop
			}
			if isConflict(err) {
				out.Duplicates++
				continue
			}
			out.Failed++
			c.logger.WarnContext(ctx, "postgrest row rejected", "table", table.Name, "key", keyAt(keys, idx), "error", err)
		}
	}
	return out, nil
}

// fatalWriteError returns the error that should abort the whole call.
func (c *Client) fatalWriteError(err error) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		return fmt.Errorf("%w: storage is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	return nil
}

func postBatch[T any](ctx context.Context, c *Client, table storage.Table, rows []T) (storage.Result, error) {
	body, err := sonic.Marshal(rows)
	if err != nil {
		return storage.Result{}, crerr.Wrap(err, "marshal rows")
	}
	sent := len(rows)

	fullURL := c.tableURL(table)
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("postgrest.table", table.Name),
			attribute.Int("postgrest.rows", sent),
		)
	}
	if c.logger.Enabled(logging.LevelDebug) {
		c.logger.DebugContext(ctx, "postgrest insert request", "table", table.Name, "rows", sent, "curl_preview", buildCurlPreview(fullURL, preferHeader(table), truncateForLog(string(body), 2048)))
	}

	out, err := c.breaker.Execute(func() (any, error) {
		return c.executeRequest(ctx, fullURL, preferHeader(table), body)
	})
	if err != nil {
		return storage.Result{}, err
	}
	raw, _ := out.([]byte)

	returned := sent
	if len(bytes.TrimSpace(raw)) > 0 {
		var inserted []map[string]any
		if err := sonic.Unmarshal(raw, &inserted); err != nil {
			return storage.Result{}, crerr.Wrap(err, "decode postgrest response")
		}
		returned = len(inserted)
	}
	if returned > sent {
		returned = sent
	}

	if table.Resolution == storage.MergeDuplicates {
		return storage.Result{Written: sent}, nil
	}
	return storage.Result{Written: returned, Duplicates: sent - returned}, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL, prefer string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
		if err != nil {
			return nil, crerr.Wrap(err, "create postgrest request")
		}
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Prefer", prefer)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: send request: %s", errPostgRESTTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errPostgRESTTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: postgrest status=%d body=%s", errPostgRESTTransient, resp.StatusCode, sanitizeSensitiveText(abbreviateBody(raw), c.apiKey))
			default:
				return nil, &StatusError{StatusCode: resp.StatusCode, Body: sanitizeSensitiveText(abbreviateBody(raw), c.apiKey)}
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
	return nil, lastErr
}

// tableURL renders {base}/{table}?on_conflict=a,b&select=a,b.
func (c *Client) tableURL(table storage.Table) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	cols := strings.Join(table.ConflictColumns, ",")
	_, _ = buf.WriteString(c.baseURL)
	_ = buf.WriteByte('/')
	_, _ = buf.WriteString(url.PathEscape(table.Name))
	_, _ = buf.WriteString("?on_conflict=")
	_, _ = buf.WriteString(url.QueryEscape(cols))
	_, _ = buf.WriteString("&select=")
	_, _ = buf.WriteString(url.QueryEscape(cols))
	return buf.String()
}

func preferHeader(table storage.Table) string {
	return "resolution=" + string(table.Resolution) + ",return=representation"
}

func buildCurlPreview(fullURL, prefer, body string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}
	appendFlagHeader := func(value string) {
		appendPart("-H")
		appendPart(shellQuote(value))
	}

	appendPart("curl")
	appendPart("-X")
	appendPart("POST")
	appendPart(shellQuote(fullURL))
	appendFlagHeader("apikey: ***")
	appendFlagHeader("Authorization: Bearer ***")
	appendFlagHeader("Content-Type: application/json")
	appendFlagHeader("Prefer: " + prefer)
	appendPart("-d")
	appendPart(shellQuote(body))

	return buf.String()
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return strings.TrimRight(candidate, "/"), nil
}

func isConflict(err error) bool {
	var statusErr *StatusError
	return stderrors.As(err, &statusErr) && statusErr.StatusCode == http.StatusConflict
}

// isRowLevelStatus reports statuses caused by row content (constraint or
// type violations) rather than by the request as a whole.
func isRowLevelStatus(code int) bool {
	return code == http.StatusBadRequest || code == http.StatusConflict || code == http.StatusUnprocessableEntity
}

func isPostgRESTCircuitFailure(err error) bool {
	return err != nil && stderrors.Is(err, errPostgRESTTransient)
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

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, limit int) string {
	if limit <= 0 || len(value) <= limit {
		return value
	}
	return value[:limit] + "...(truncated)"
}

func keyAt(keys []string, idx int) string {
	if idx < 0 || idx >= len(keys) {
		return strconv.Itoa(idx)
	}
	return keys[idx]
}
