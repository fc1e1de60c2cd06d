package patentscope

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func recordPage(t *testing.T, pubNumbers ...string) *goquery.Document {
	var b strings.Builder
	for _, pn := range pubNumbers {
		b.WriteString(`<div class="result-item">`)
		b.WriteString(`<span class="publication-number">` + pn + `</span>`)
		b.WriteString(`<span class="title">Result for ` + pn + `</span>`)
		b.WriteString(`</div>`)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(b.String()))
	require.NoError(t, err)
	return doc
}

func TestCrawlTermsMergesInTermOrder(t *testing.T) {
	pages := map[string]*goquery.Document{
		"aspirin":              recordPage(t, "WO2024000001", "WO2024000002"),
		"acetylsalicylic acid": recordPage(t, "WO2024000002", "WO2024000003"),
	}
	factory := func(_ context.Context, term string) (Pager, error) {
		return newFakePager(pages[term]), nil
	}

	result := CrawlTerms(
		context.Background(), factory,
		[]string{"aspirin", "acetylsalicylic acid"},
		10, 100,
	)
	require.NoError(t, result.Err)
	require.Len(t, result.Records, 3)

	// the duplicate keeps the values seen under the earlier term
	require.Equal(t, "WO2024000001", result.Records[0].PublicationNumber)
	require.Equal(t, "WO2024000002", result.Records[1].PublicationNumber)
	require.Equal(t, `EN_ALL:(aspirin)`, result.Records[1].SourceQuery)
	require.Equal(t, "WO2024000003", result.Records[2].PublicationNumber)
}

func TestCrawlTermsSurvivesFailedTerm(t *testing.T) {
	factory := func(_ context.Context, term string) (Pager, error) {
		pager := newFakePager(recordPage(t, "WO2024000009"))
		if term == "broken" {
			pager.failAt = 0
		}
		return pager, nil
	}

	result := CrawlTerms(
		context.Background(), factory,
		[]string{"broken", "aspirin"},
		10, 100,
	)
	require.NoError(t, result.Err)
	require.Len(t, result.Records, 1)
	require.Equal(t, "WO2024000009", result.Records[0].PublicationNumber)
}

func TestTermVariants(t *testing.T) {
	require.Equal(t, []string{"C6H12O6"}, TermVariants("C6H12O6"))
	require.Equal(t, []string{"Aspirin", "aspirin"}, TermVariants("Aspirin"))
	require.Equal(t, []string{"glucose"}, TermVariants("glucose"))
}
