package patentscope

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

// resultPage builds a result document with count records starting at
// the given sequence number.
func resultPage(t *testing.T, start, count int, withNext bool, totalText string) *goquery.Document {
	var b strings.Builder
	if totalText != "" {
		fmt.Fprintf(&b, `<span class="total-results">%v</span>`, totalText)
	}
	for i := 0; i < count; i++ {
		n := start + i
		fmt.Fprintf(&b, `
			<div class="result-item">
				<span class="publication-number">WO2024%06d</span>
				<span class="title">Synthesized compound number %d</span>
			</div>`, n, n)
	}
	if withNext {
		b.WriteString(`<a class="next" href="#">Next</a>`)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(b.String()))
	require.NoError(t, err)
	return doc
}

func emptyPage(t *testing.T) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<p>No results found for your query.</p>`))
	require.NoError(t, err)
	return doc
}

// fakePager serves a canned page sequence, optionally failing at a
// given page index.
type fakePager struct {
	pages []*goquery.Document
	failAt int
	idx    int
}

func newFakePager(pages ...*goquery.Document) *fakePager {
	return &fakePager{pages: pages, failAt: -1}
}

func (p *fakePager) page() (*goquery.Document, error) {
	if p.idx == p.failAt {
		return nil, &FetchError{Reason: FailRetriesExhausted, URL: "fake"}
	}
	if p.idx >= len(p.pages) {
		doc, _ := goquery.NewDocumentFromReader(strings.NewReader(""))
		return doc, nil
	}
	return p.pages[p.idx], nil
}

func (p *fakePager) First(_ context.Context, _ string, _ int) (*goquery.Document, error) {
	p.idx = 0
	return p.page()
}

func (p *fakePager) Advance(_ context.Context) (*goquery.Document, error) {
	p.idx++
	return p.page()
}

func testSpec(pageSize, maxResults int) SearchSpec {
	return NewSearchSpec("C6H12O6", pageSize, maxResults)
}

func TestCrawlerStopsAtLimit(t *testing.T) {
	pager := newFakePager(
		resultPage(t, 0, 10, true, "30"),
		resultPage(t, 10, 10, true, ""),
		resultPage(t, 20, 10, true, ""),
	)
	crawler := &Crawler{Pager: pager}

	result := crawler.Run(context.Background(), testSpec(10, 25))
	require.NoError(t, result.Err)
	require.Equal(t, StopLimitReached, result.StopReason)
	require.Equal(t, 3, result.Pages)
	require.Len(t, result.Records, 25)
	require.True(t, result.TotalKnown)
	require.Equal(t, 30, result.Total)
	require.Equal(t, "WO2024000000", result.Records[0].PublicationNumber)
	require.Equal(t, "WO2024000024", result.Records[24].PublicationNumber)
}

func TestCrawlerEmptyFirstPage(t *testing.T) {
	crawler := &Crawler{Pager: newFakePager(emptyPage(t))}

	result := crawler.Run(context.Background(), testSpec(10, 100))
	require.NoError(t, result.Err)
	require.Equal(t, StopNoMoreData, result.StopReason)
	require.Empty(t, result.Records)
	require.Equal(t, 1, result.Pages)
}

func TestCrawlerEmptyPageEndsCrawl(t *testing.T) {
	pager := newFakePager(
		resultPage(t, 0, 10, true, "100"),
		emptyPage(t),
		resultPage(t, 10, 10, true, ""),
	)
	crawler := &Crawler{Pager: pager}

	result := crawler.Run(context.Background(), testSpec(10, 100))
	require.NoError(t, result.Err)
	require.Equal(t, StopEmptyPageLimit, result.StopReason)
	require.Len(t, result.Records, 10)
	require.Equal(t, 2, result.Pages)
}

func TestCrawlerKeepsPartialResultsOnFailure(t *testing.T) {
	pager := newFakePager(
		resultPage(t, 0, 10, true, "100"),
		resultPage(t, 10, 10, true, ""),
	)
	pager.failAt = 1
	crawler := &Crawler{Pager: pager}

	result := crawler.Run(context.Background(), testSpec(10, 100))
	require.Error(t, result.Err)
	require.Equal(t, StopError, result.StopReason)
	require.Len(t, result.Records, 10)
	require.Equal(t, 1, result.Pages)

	var fe *FetchError
	require.ErrorAs(t, result.Err, &fe)
	require.Equal(t, FailRetriesExhausted, fe.Reason)
}

func TestCrawlerStopsWithoutNextControl(t *testing.T) {
	crawler := &Crawler{Pager: newFakePager(resultPage(t, 0, 4, false, "4"))}

	result := crawler.Run(context.Background(), testSpec(10, 100))
	require.NoError(t, result.Err)
	require.Equal(t, StopNoMoreData, result.StopReason)
	require.Len(t, result.Records, 4)
}

func TestCrawlerPageCap(t *testing.T) {
	var pages []*goquery.Document
	for i := 0; i < pageCap+2; i++ {
		pages = append(pages, resultPage(t, i*10, 10, true, "1000"))
	}
	crawler := &Crawler{Pager: newFakePager(pages...)}

	// MaxResults of zero leaves the crawl bounded only by the page cap
	spec := SearchSpec{RawInput: "C6H12O6", Kind: KindFormula, PageSize: 10}
	result := crawler.Run(context.Background(), spec)
	require.NoError(t, result.Err)
	require.Equal(t, StopPageCap, result.StopReason)
	require.Equal(t, pageCap, result.Pages)
	require.Len(t, result.Records, pageCap*10)
}

func TestCrawlerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	crawler := &Crawler{Pager: newFakePager(resultPage(t, 0, 10, true, "10"))}

	result := crawler.Run(ctx, testSpec(10, 100))
	require.Error(t, result.Err)
	require.Equal(t, StopError, result.StopReason)
	require.Empty(t, result.Records)
	require.Zero(t, result.Pages)
}
