package patents

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"patsearch-backend/lib/patentstore"
	"patsearch-backend/lib/scrapers/patentscope"
	"patsearch-backend/lib/telemetry"
	"patsearch-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	lastSpec patentscope.SearchSpec
	result   patentscope.CrawlResult
	detail   patentscope.Detail
	err      error
}

func (e *fakeEngine) Crawl(_ context.Context, spec patentscope.SearchSpec) patentscope.CrawlResult {
	e.lastSpec = spec
	return e.result
}

func (e *fakeEngine) FetchDetail(_ context.Context, id string) (patentscope.Detail, error) {
	return e.detail, e.err
}

func crawlRecords(n int) []patentscope.Record {
	records := make([]patentscope.Record, n)
	for i := range records {
		records[i] = patentscope.Record{
			ID:                fmt.Sprintf("WO2024%06d", i),
			PublicationNumber: fmt.Sprintf("WO2024%06d", i),
			Title:             fmt.Sprintf("Glucose derivative number %d", i),
		}
	}
	return records
}

func TestSearchValidation(t *testing.T) {
	service := NewService(&fakeEngine{}, nil)

	for _, tc := range []struct {
		name  string
		req   SearchRequest
		field string
	}{
		{"empty molecule", SearchRequest{Molecule: "  "}, "molecule"},
		{"too short", SearchRequest{Molecule: "C"}, "molecule"},
		{"too long", SearchRequest{Molecule: strings.Repeat("C", 501)}, "molecule"},
		{"markup", SearchRequest{Molecule: "<b>C6H12O6</b>"}, "molecule"},
		{"script", SearchRequest{Molecule: "javascript:alert(1)"}, "molecule"},
		{"bad search type", SearchRequest{Molecule: "C6H12O6", SearchType: "fuzzy"}, "search_type"},
		{"negative page", SearchRequest{Molecule: "C6H12O6", Page: -1}, "page"},
		{"oversized page", SearchRequest{Molecule: "C6H12O6", PageSize: 200}, "page_size"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Search(context.Background(), tc.req)
			var ve *patentscope.ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestSearchPagination(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:patents")
	defer cleanup()

	engine := &fakeEngine{result: patentscope.CrawlResult{
		Records:    crawlRecords(10),
		Pages:      1,
		StopReason: patentscope.StopLimitReached,
		Total:      23,
		TotalKnown: true,
	}}
	service := NewService(engine, nil)

	response, err := service.Search(context.Background(), SearchRequest{
		Molecule: "C6H12O6",
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)

	require.Equal(t, patentscope.KindFormula, engine.lastSpec.Kind)
	require.Equal(t, 10, engine.lastSpec.MaxResults)

	require.Equal(t, "success", response.Status)
	require.Len(t, response.Records, 10)
	require.Equal(t, Pagination{
		CurrentPage:  1,
		PageSize:     10,
		TotalResults: 23,
		TotalPages:   3,
		HasNext:      true,
		HasPrevious:  false,
		NextPage:     intPtr(2),
	}, response.Pagination)

	for _, r := range response.Records {
		require.GreaterOrEqual(t, r.RelevanceScore, 0.0)
		require.LessOrEqual(t, r.RelevanceScore, 1.0)
	}
}

func intPtr(n int) *int { return &n }

func TestSearchSecondPage(t *testing.T) {
	engine := &fakeEngine{result: patentscope.CrawlResult{
		Records:    crawlRecords(15),
		StopReason: patentscope.StopNoMoreData,
	}}
	service := NewService(engine, nil)

	response, err := service.Search(context.Background(), SearchRequest{
		Molecule: "C6H12O6",
		Page:     2,
		PageSize: 10,
	})
	require.NoError(t, err)

	// the crawl is asked for enough records to cover the offset
	require.Equal(t, 20, engine.lastSpec.MaxResults)

	require.Len(t, response.Records, 5)
	require.Equal(t, "WO2024000010", response.Records[0].PublicationNumber)
	require.True(t, response.Pagination.HasPrevious)
	require.False(t, response.Pagination.HasNext)
	require.Equal(t, intPtr(1), response.Pagination.PreviousPage)
}

func TestSearchFailureReturnsErrorPayload(t *testing.T) {
	engine := &fakeEngine{result: patentscope.CrawlResult{
		StopReason: patentscope.StopError,
		Err:        &patentscope.FetchError{Reason: patentscope.FailRetriesExhausted, URL: "/search"},
	}}
	service := NewService(engine, nil)

	response, err := service.Search(context.Background(), SearchRequest{Molecule: "C6H12O6"})
	require.NoError(t, err)
	require.Equal(t, "error", response.Status)
	require.NotEmpty(t, response.Error)
	require.Empty(t, response.Records)
	require.Zero(t, response.Pagination.TotalResults)
}

func TestSearchPartialResultsSurvive(t *testing.T) {
	engine := &fakeEngine{result: patentscope.CrawlResult{
		Records:    crawlRecords(7),
		StopReason: patentscope.StopError,
		Err:        &patentscope.FetchError{Reason: patentscope.FailTimeout, URL: "/search"},
	}}
	service := NewService(engine, nil)

	response, err := service.Search(context.Background(), SearchRequest{Molecule: "C6H12O6"})
	require.NoError(t, err)
	require.Equal(t, "success", response.Status)
	require.Len(t, response.Records, 7)
}

func TestSearchPersistsToStore(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "patents",
		DbSchema: patentstore.Schema,
	})
	defer cleanup()
	store := patentstore.NewStore(res.DB)

	engine := &fakeEngine{result: patentscope.CrawlResult{
		Records:    crawlRecords(3),
		Pages:      1,
		StopReason: patentscope.StopNoMoreData,
	}}
	service := NewService(engine, &store)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := service.Search(ctx, SearchRequest{Molecule: "C6H12O6"})
	require.NoError(t, err)

	stats, err := service.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.PatentCount)
	require.Equal(t, 1, stats.SearchCount)
}

func TestDetailValidation(t *testing.T) {
	service := NewService(&fakeEngine{}, nil)
	_, err := service.Detail(context.Background(), "  ")
	var ve *patentscope.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestDetailNotFound(t *testing.T) {
	service := NewService(&fakeEngine{err: patentscope.ErrPatentNotFound}, nil)
	_, err := service.Detail(context.Background(), "WO0000000000")
	require.ErrorIs(t, err, patentscope.ErrPatentNotFound)
}
