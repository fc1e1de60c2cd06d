// Package patents is the outward-facing search API. It validates
// requests at the boundary, runs the portal crawl, shapes pagination,
// and records results in the patent store.
package patents

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"patsearch-backend/lib/patentstore"
	"patsearch-backend/lib/scrapers/patentscope"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services/patents")

// Engine is the crawl capability the service consumes. The production
// implementation opens one portal session per call; tests substitute a
// canned one.
type Engine interface {
	Crawl(ctx context.Context, spec patentscope.SearchSpec) patentscope.CrawlResult
	FetchDetail(ctx context.Context, id string) (patentscope.Detail, error)
}

// portalEngine builds a fresh client and pager per crawl so concurrent
// API requests never share session state.
type portalEngine struct {
	opts patentscope.ClientOptions
}

func NewPortalEngine(opts patentscope.ClientOptions) Engine {
	return portalEngine{opts: opts}
}

func (e portalEngine) newClient(ctx context.Context) (*patentscope.Client, error) {
	client, err := patentscope.NewClient(ctx, e.opts)
	if err != nil {
		return nil, err
	}
	client.EnsureSession(ctx)
	return client, nil
}

func (e portalEngine) Crawl(ctx context.Context, spec patentscope.SearchSpec) patentscope.CrawlResult {
	client, err := e.newClient(ctx)
	if err != nil {
		return patentscope.CrawlResult{StopReason: patentscope.StopError, Err: err}
	}
	crawler := &patentscope.Crawler{
		Pager:   patentscope.NewHttpPager(client),
		BaseURL: client.BaseURL,
	}
	return crawler.Run(ctx, spec)
}

func (e portalEngine) FetchDetail(ctx context.Context, id string) (patentscope.Detail, error) {
	client, err := e.newClient(ctx)
	if err != nil {
		return patentscope.Detail{}, err
	}
	return client.FetchDetail(ctx, id)
}

type Service struct {
	engine Engine
	store  *patentstore.Store

	now func() time.Time
}

// NewService wires the search API. The store may be nil, in which case
// results are served but not persisted.
func NewService(engine Engine, store *patentstore.Store) *Service {
	return &Service{
		engine: engine,
		store:  store,
		now:    time.Now,
	}
}

const (
	minMoleculeLength = 2
	maxMoleculeLength = 500
	maxPageSize       = 100
	defaultPageSize   = 10
)

// dangerousSubstrings are rejected outright before any query
// construction, markup and scripting have no business in a molecule.
var dangerousSubstrings = []string{"<", ">", "script", "javascript"}

var searchTypes = map[string]bool{
	"":             true,
	"exact":        true,
	"similarity":   true,
	"substructure": true,
}

// ValidateSearch checks a request against the boundary rules. It
// returns a *patentscope.ValidationError naming the offending field.
func ValidateSearch(req SearchRequest) error {
	molecule := strings.TrimSpace(req.Molecule)
	if molecule == "" {
		return &patentscope.ValidationError{Field: "molecule", Message: "must not be empty"}
	}
	if len(molecule) < minMoleculeLength || len(molecule) > maxMoleculeLength {
		return &patentscope.ValidationError{Field: "molecule", Message: "must be between 2 and 500 characters"}
	}
	lowered := strings.ToLower(molecule)
	for _, bad := range dangerousSubstrings {
		if strings.Contains(lowered, bad) {
			return &patentscope.ValidationError{Field: "molecule", Message: "contains disallowed characters"}
		}
	}
	if !searchTypes[req.SearchType] {
		return &patentscope.ValidationError{Field: "search_type", Message: "must be one of exact, similarity, substructure"}
	}
	if req.Page < 0 {
		return &patentscope.ValidationError{Field: "page", Message: "must be at least 1"}
	}
	if req.PageSize < 0 || req.PageSize > maxPageSize {
		return &patentscope.ValidationError{Field: "page_size", Message: "must be between 1 and 100"}
	}
	return nil
}

func (r *SearchRequest) applyDefaults() {
	r.Molecule = strings.TrimSpace(r.Molecule)
	if r.Page == 0 {
		r.Page = 1
	}
	if r.PageSize == 0 {
		r.PageSize = defaultPageSize
	}
}

// relevance scores a result title against the molecule input. The
// score is advisory only, record order stays as the portal returned
// it.
func relevance(molecule, title string) float64 {
	if title == "" {
		return 0
	}
	return matchr.JaroWinkler(strings.ToLower(molecule), strings.ToLower(title), false)
}

func paginate(page, pageSize, total int) Pagination {
	totalPages := (total + pageSize - 1) / pageSize
	p := Pagination{
		CurrentPage:  page,
		PageSize:     pageSize,
		TotalResults: total,
		TotalPages:   totalPages,
		HasNext:      page < totalPages,
		HasPrevious:  page > 1,
	}
	if p.HasNext {
		next := page + 1
		p.NextPage = &next
	}
	if p.HasPrevious {
		prev := page - 1
		p.PreviousPage = &prev
	}
	return p
}

// Search runs one crawl and shapes the requested page of results. A
// crawl that failed outright yields a structured error payload with
// zero records rather than an error return; only validation problems
// surface as errors.
func (s *Service) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	ctx, span := tracer.Start(ctx, "patents:Search")
	defer span.End()

	if err := ValidateSearch(req); err != nil {
		return SearchResponse{}, err
	}
	req.applyDefaults()

	start := s.now()
	spec := patentscope.SearchSpec{
		RawInput:   req.Molecule,
		Kind:       patentscope.Classify(req.Molecule),
		Countries:  req.Countries,
		DateStart:  req.DateStart,
		DateEnd:    req.DateEnd,
		PageSize:   req.PageSize,
		MaxResults: req.Page * req.PageSize,
	}

	result := s.engine.Crawl(ctx, spec)
	elapsed := s.now().Sub(start)

	response := SearchResponse{
		Status:     "success",
		StopReason: result.StopReason.String(),
		DurationMs: elapsed.Milliseconds(),
		ScrapedAt:  start,
	}

	if result.Err != nil && len(result.Records) == 0 {
		response.Status = "error"
		response.Error = result.Err.Error()
		response.Records = []ScoredRecord{}
		response.Pagination = paginate(req.Page, req.PageSize, 0)
		return response, nil
	}

	total := len(result.Records)
	if result.TotalKnown && result.Total > total {
		total = result.Total
	}

	offset := (req.Page - 1) * req.PageSize
	var pageRecords []patentscope.Record
	if offset < len(result.Records) {
		end := offset + req.PageSize
		if end > len(result.Records) {
			end = len(result.Records)
		}
		pageRecords = result.Records[offset:end]
	}

	response.Records = make([]ScoredRecord, len(pageRecords))
	for i, r := range pageRecords {
		response.Records[i] = ScoredRecord{
			Record:         r,
			RelevanceScore: relevance(req.Molecule, r.Title),
		}
	}
	response.Pagination = paginate(req.Page, req.PageSize, total)

	s.persist(ctx, req, spec, result, elapsed, start)
	return response, nil
}

// persist is best-effort: a broken store must not fail a search that
// already succeeded.
func (s *Service) persist(
	ctx context.Context,
	req SearchRequest,
	spec patentscope.SearchSpec,
	result patentscope.CrawlResult,
	elapsed time.Duration,
	at time.Time,
) {
	if s.store == nil {
		return
	}
	if err := s.store.PushRecords(ctx, result.Records, at); err != nil {
		slog.WarnContext(ctx, "failed to persist records", "err", err)
	}
	err := s.store.LogSearch(ctx, patentstore.SearchLog{
		RawInput:     req.Molecule,
		Query:        patentscope.BuildQuery(spec),
		TotalResults: result.Total,
		RecordCount:  len(result.Records),
		Pages:        result.Pages,
		StopReason:   result.StopReason.String(),
		Duration:     elapsed,
		CreatedAt:    at,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to log search", "err", err)
	}
}

// Detail fetches the full record for one patent identifier.
func (s *Service) Detail(ctx context.Context, id string) (patentscope.Detail, error) {
	ctx, span := tracer.Start(ctx, "patents:Detail")
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return patentscope.Detail{}, &patentscope.ValidationError{Field: "id", Message: "must not be empty"}
	}
	return s.engine.FetchDetail(ctx, id)
}

// Stats reports store contents; zero values when no store is wired.
func (s *Service) Stats(ctx context.Context) (patentstore.Stats, error) {
	if s.store == nil {
		return patentstore.Stats{}, nil
	}
	return s.store.Stats(ctx)
}
