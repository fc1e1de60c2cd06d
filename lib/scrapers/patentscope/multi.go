package patentscope

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

// PagerFactory builds a fresh Pager for one term crawl. Every term
// runs in its own session: pagers hold session state and must never be
// shared across concurrent crawls.
type PagerFactory func(ctx context.Context, term string) (Pager, error)

// CrawlTerms crawls several term variants of the same molecule
// concurrently, one session each, and merges the results in term
// order. Records seen under an earlier term win over duplicates from a
// later term; the term list is ordered most-specific first. A term
// whose crawl fails contributes its partial records and is otherwise
// skipped, a single bad variant should not sink the whole search.
func CrawlTerms(ctx context.Context, factory PagerFactory, terms []string, pageSize, maxResults int) CrawlResult {
	ctx, span := tracer.Start(ctx, "crawler.CrawlTerms")
	defer span.End()

	results := make([]CrawlResult, len(terms))
	group, ctx := errgroup.WithContext(ctx)
	for i, term := range terms {
		i, term := i, term
		group.Go(func() error {
			pager, err := factory(ctx, term)
			if err != nil {
				return err
			}
			spec := NewSearchSpec(term, pageSize, maxResults)
			results[i] = (&Crawler{Pager: pager}).Run(ctx, spec)
			if results[i].Err != nil {
				slog.WarnContext(ctx, "term crawl failed, keeping partial results",
					"term", term, "err", results[i].Err)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return CrawlResult{StopReason: StopError, Err: err}
	}

	var merged CrawlResult
	merged.StopReason = StopNoMoreData
	for _, r := range results {
		merged.Records = append(merged.Records, r.Records...)
		merged.Pages += r.Pages
		if r.TotalKnown && r.Total > merged.Total {
			merged.Total = r.Total
			merged.TotalKnown = true
		}
		if r.StopReason == StopLimitReached {
			merged.StopReason = StopLimitReached
		}
	}
	merged.Records = Dedupe(merged.Records)
	if maxResults > 0 && len(merged.Records) > maxResults {
		merged.Records = merged.Records[:maxResults]
		merged.StopReason = StopLimitReached
	}
	return merged
}

// TermVariants expands a raw molecule input into the portal search
// terms worth trying, most specific first. A formula or SMILES input
// yields just itself; a name additionally tries its lowercased form
// when that differs, since the portal's all-field search is case
// sensitive for some indexes.
func TermVariants(rawInput string) []string {
	spec := NewSearchSpec(rawInput, 0, 0)
	terms := []string{spec.RawInput}
	if spec.Kind == KindName {
		lower := strings.ToLower(spec.RawInput)
		if lower != spec.RawInput {
			terms = append(terms, lower)
		}
	}
	return terms
}
