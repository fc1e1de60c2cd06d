package patentscope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http/cookiejar"
	"net/url"
	"os"
	"time"

	"patsearch-backend/lib/ratelimit"
	"patsearch-backend/lib/restyutil"
	"patsearch-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	gorandom "github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/patentscope")

const (
	DefaultBaseURL = "https://patentscope.wipo.int"

	searchPath = "/search/en/result.jsf"
	detailPath = "/search/en/detail.jsf"

	defaultMaxRetries   = 3
	defaultTimeout      = 30 * time.Second
	defaultMinDelay     = 1 * time.Second
	defaultMaxDelay     = 3 * time.Second
	rateLimitedCooldown = 5 * time.Second
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

func randomUserAgent() string {
	i, err := gorandom.IntRange(0, len(userAgents))
	if err != nil {
		return userAgents[0]
	}
	return userAgents[i]
}

type ClientOptions struct {
	// BaseURL defaults to the public portal.
	BaseURL string
	// MinDelay/MaxDelay bound the adaptive inter-request delay.
	MinDelay time.Duration
	MaxDelay time.Duration
	// MaxRetries is the per-fetch attempt budget. Default 3.
	MaxRetries int
	Timeout    time.Duration
	// Auth is the login collaborator. Nil means anonymous.
	Auth Authenticator
}

// Client owns one portal session: the HTTP client with its cookie jar
// and the session's rate limiter. It is the single place that talks to
// the network; everything above goes through FetchWithRetry. A Client
// must not be shared across concurrent crawls.
type Client struct {
	BaseURL *url.URL
	Http    *resty.Client

	limiter    *ratelimit.Limiter
	maxRetries int
	auth       Authenticator

	// test seams: unit backoff sleeps are multiples of backoffUnit
	backoffUnit time.Duration
	sleep       func(context.Context, time.Duration) error
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	baseURL, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	if opts.MinDelay <= 0 {
		opts.MinDelay = defaultMinDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = defaultMaxDelay
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Auth == nil {
		opts.Auth = Anonymous{}
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", randomUserAgent())
	client.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("accept-language", "en-US,en;q=0.9")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseURL.Hostname()))
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "scrapers/patentscope/http")
	if instrumentOutput != nil {
		restyutil.DumpExchanges(client, instrumentOutput)
	}

	return &Client{
		BaseURL:     baseURL,
		Http:        client,
		limiter:     ratelimit.New(opts.MinDelay, opts.MaxDelay),
		maxRetries:  opts.MaxRetries,
		auth:        opts.Auth,
		backoffUnit: time.Second,
		sleep:       sleepContext,
	}, nil
}

var instrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput dumps raw portal exchanges from clients
// created after this call; useful when the markup drifts and the
// extraction cascades need new strategies.
func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	instrumentOutput = output
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// EnsureSession gives the login collaborator one chance to establish an
// authenticated session. Login failure is not fatal: the portal serves
// anonymous queries, so the crawl proceeds unauthenticated.
func (c *Client) EnsureSession(ctx context.Context) {
	if c.auth.Authenticated() {
		return
	}
	if err := c.auth.Reauthenticate(ctx); err != nil {
		slog.WarnContext(ctx, "login failed, continuing in anonymous mode", "err", err)
	}
}

// FetchWithRetry fetches a portal path, retrying on transient failures.
// Two independent backoffs apply: the session rate limiter paces
// steady-state cadence before every attempt, and retries additionally
// sleep 2^attempt plus jitter as per-attempt storm control. A 429 gets
// a flat cooldown instead but still consumes an attempt. All non-200
// statuses are treated as retryable, portal errors are usually
// transient. After the budget is spent the call fails with *FetchError.
func (c *Client) FetchWithRetry(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "client:FetchWithRetry")
	defer span.End()

	var lastStatus int
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<attempt)*c.backoffUnit +
				time.Duration(rand.Float64()*float64(c.backoffUnit))
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		res, err := c.Http.R().
			SetContext(ctx).
			SetQueryParams(params).
			Get(path)
		if err != nil {
			c.limiter.RecordError()
			lastErr = err
			slog.DebugContext(ctx, "fetch attempt failed",
				"path", path, "attempt", attempt, "err", err)
			if attempt == c.maxRetries-1 {
				reason := FailNetwork
				if isTimeout(err) {
					reason = FailTimeout
				}
				span.SetStatus(codes.Error, "fetch failed")
				return nil, &FetchError{Reason: reason, URL: path, Err: err}
			}
			continue
		}

		lastStatus = res.StatusCode()
		switch {
		case res.StatusCode() == 200:
			c.limiter.RecordSuccess()
			return res.Body(), nil

		case res.StatusCode() == 429:
			c.limiter.RecordError()
			slog.WarnContext(ctx, "portal rate limited, cooling down",
				"path", path, "attempt", attempt)
			if err := c.sleep(ctx, rateLimitedCooldown); err != nil {
				return nil, err
			}

		default:
			// 5xx and other non-2xx alike: portal errors are often
			// transient, spend the remaining attempts on them
			c.limiter.RecordError()
			slog.DebugContext(ctx, "fetch attempt got error status",
				"path", path, "attempt", attempt, "status", res.StatusCode())
		}
		lastErr = fmt.Errorf("status %d", lastStatus)
	}

	span.SetStatus(codes.Error, "retries exhausted")
	reason := FailRetriesExhausted
	if lastStatus == 429 {
		reason = FailRateLimited
	}
	return nil, &FetchError{Reason: reason, URL: path, Status: lastStatus, Err: lastErr}
}

func isTimeout(err error) bool {
	if os.IsTimeout(err) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
