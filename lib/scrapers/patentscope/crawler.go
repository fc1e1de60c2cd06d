package patentscope

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"patsearch-backend/lib/driver"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// pageCap bounds any single crawl regardless of the requested limit.
const pageCap = 10

// Pager abstracts how the session moves between result pages: a plain
// HTTP offset increment, or clicking the portal's rendered next
// control. The crawl state machine does not care which.
type Pager interface {
	// First prepares the session for the query and returns the first
	// result page.
	First(ctx context.Context, query string, pageSize int) (*goquery.Document, error)
	// Advance moves the session to the next result page.
	Advance(ctx context.Context) (*goquery.Document, error)
}

// httpPager paginates by incrementing the result offset parameter.
type httpPager struct {
	client    *Client
	query     string
	pageSize  int
	pageIndex int
}

// NewHttpPager returns a Pager that drives pagination over plain HTTP
// requests against the given session.
func NewHttpPager(client *Client) Pager {
	return &httpPager{client: client}
}

func (p *httpPager) fetch(ctx context.Context) (*goquery.Document, error) {
	body, err := p.client.FetchWithRetry(ctx, searchPath, map[string]string{
		"query":      p.query,
		"office":     "all",
		"sortOption": "Relevance",
		"maxRec":     strconv.Itoa(p.pageSize),
		"startRec":   strconv.Itoa(p.pageIndex * p.pageSize),
	})
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

func (p *httpPager) First(ctx context.Context, query string, pageSize int) (*goquery.Document, error) {
	p.query = query
	p.pageSize = pageSize
	p.pageIndex = 0
	return p.fetch(ctx)
}

func (p *httpPager) Advance(ctx context.Context) (*goquery.Document, error) {
	p.pageIndex++
	return p.fetch(ctx)
}

// Selector cascades for driving the rendered search form. Same idea as
// the extraction strategies: the portal renames its JSF component ids
// from time to time.
var (
	searchInputSelectors = []string{
		`#simpleSearchForm\:fpSearch\:input`,
		`input[name*=fpSearch]`,
		`input[type=search]`,
		`input[type=text]`,
	}
	searchButtonSelectors = []string{
		`#simpleSearchForm\:commandSimpleFPSearch`,
		`button[type=submit]`,
		`input[type=submit]`,
	}
	nextButtonSelectors = []string{
		`a[id*=next]`,
		`a.next`,
		`a[title*=Next]`,
	}
)

// driverPager paginates by interacting with a rendered browser
// session: type the query, click search, then click next.
type driverPager struct {
	drv     driver.Driver
	baseURL string
}

// NewDriverPager returns a Pager backed by a rendered browser session.
// The driver is exclusively owned by this pager for the lifetime of
// the crawl.
func NewDriverPager(drv driver.Driver, baseURL string) Pager {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &driverPager{drv: drv, baseURL: baseURL}
}

func locateFirst(ctx context.Context, drv driver.Driver, selectors []string) (driver.Element, bool) {
	for _, selector := range selectors {
		if el, ok := drv.Locate(ctx, selector); ok {
			return el, true
		}
	}
	return nil, false
}

func (p *driverPager) First(ctx context.Context, query string, pageSize int) (*goquery.Document, error) {
	if err := p.drv.Navigate(ctx, p.baseURL+"/search/en/search.jsf"); err != nil {
		return nil, fmt.Errorf("navigate to search form: %w", err)
	}
	input, ok := locateFirst(ctx, p.drv, searchInputSelectors)
	if !ok {
		return nil, fmt.Errorf("no search input found on %v", p.baseURL)
	}
	if err := input.TypeText(ctx, query); err != nil {
		return nil, fmt.Errorf("type query: %w", err)
	}
	button, ok := locateFirst(ctx, p.drv, searchButtonSelectors)
	if !ok {
		return nil, fmt.Errorf("no search button found on %v", p.baseURL)
	}
	if err := button.Click(ctx); err != nil {
		return nil, fmt.Errorf("submit search: %w", err)
	}
	return p.drv.CurrentDocument(ctx)
}

func (p *driverPager) Advance(ctx context.Context) (*goquery.Document, error) {
	next, ok := locateFirst(ctx, p.drv, nextButtonSelectors)
	if !ok {
		return nil, fmt.Errorf("no next control found")
	}
	if err := next.Click(ctx); err != nil {
		return nil, fmt.Errorf("click next: %w", err)
	}
	return p.drv.CurrentDocument(ctx)
}

// Crawler runs the pagination state machine for one search. It owns a
// crawlState for the duration of Run and nothing else; the Pager
// carries the session.
type Crawler struct {
	Pager Pager

	// BaseURL resolves relative detail links in extracted records.
	// Nil leaves DetailURL unset.
	BaseURL *url.URL
}

// Run fetches result pages for spec until a stop condition is met and
// returns the normalized, deduplicated, truncated records. A fetch
// failure stops the crawl but keeps everything accumulated so far,
// with Err set and StopReason StopError. Cancellation is checked at
// page boundaries only, never mid-extraction.
func (c *Crawler) Run(ctx context.Context, spec SearchSpec) CrawlResult {
	query := BuildQuery(spec)
	ctx, span := tracer.Start(ctx, "crawler.Run", trace.WithAttributes(
		attribute.String("query", query),
		attribute.Int("page_size", spec.PageSize),
		attribute.Int("max_results", spec.MaxResults),
	))
	defer span.End()

	state := &crawlState{}
	var result CrawlResult

	for state.currentPage = 0; state.currentPage < pageCap; state.currentPage++ {
		if err := ctx.Err(); err != nil {
			state.stop(StopError)
			result.Err = err
			break
		}

		var doc *goquery.Document
		var err error
		if state.currentPage == 0 {
			doc, err = c.Pager.First(ctx, query, spec.PageSize)
		} else {
			doc, err = c.Pager.Advance(ctx)
		}
		if err != nil {
			state.stop(StopError)
			result.Err = err
			span.SetStatus(codes.Error, err.Error())
			break
		}

		result.Pages++
		page := extractPage(doc, c.BaseURL, query, state.currentPage)
		if state.currentPage == 0 {
			result.Total, result.TotalKnown = page.Total, page.TotalKnown
		}
		slog.Debug(
			"patentscope: crawled page",
			"page", page.PageIndex,
			"records", len(page.Records),
		)

		if len(page.Records) == 0 {
			state.consecutiveEmptyPages++
			// an empty page means end-of-results, not a transient
			// failure worth retrying
			if len(state.accumulated) == 0 {
				state.stop(StopNoMoreData)
			} else {
				state.stop(StopEmptyPageLimit)
			}
			break
		}
		state.consecutiveEmptyPages = 0
		state.accumulated = append(state.accumulated, page.Records...)

		if spec.MaxResults > 0 && len(state.accumulated) >= spec.MaxResults {
			state.stop(StopLimitReached)
			break
		}
		if !page.HasMore && !(result.TotalKnown && len(state.accumulated) < result.Total) {
			state.stop(StopNoMoreData)
			break
		}
	}
	if !state.stopped {
		state.stop(StopPageCap)
	}

	result.StopReason = state.stopReason
	result.Records = Dedupe(Normalize(state.accumulated))
	if spec.MaxResults > 0 && len(result.Records) > spec.MaxResults {
		result.Records = result.Records[:spec.MaxResults]
	}

	span.SetAttributes(
		attribute.Int("pages", result.Pages),
		attribute.Int("records", len(result.Records)),
		attribute.String("stop_reason", result.StopReason.String()),
	)
	return result
}

func (s *crawlState) stop(reason StopReason) {
	s.stopped = true
	s.stopReason = reason
}
