package patentscope

import (
	"log/slog"
	"net/url"

	"patsearch-backend/lib/htmlutil"
	"patsearch-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// apply runs one strategy against a node and reports the normalized
// value it produced, if any.
func (s strategy) apply(sel *goquery.Selection) (string, bool) {
	if s.pattern != nil {
		match := s.pattern.FindString(sel.Text())
		if match == "" {
			return "", false
		}
		return textutil.NormalizeSpace(match), true
	}
	found := sel.Find(s.selector).First()
	if found.Length() == 0 {
		return "", false
	}
	var raw string
	if s.attr != "" {
		raw = found.AttrOr(s.attr, "")
	} else {
		raw = found.Text()
	}
	value := textutil.NormalizeSpace(raw)
	if value == "" {
		return "", false
	}
	return value, true
}

// firstValue runs strategies in order and returns the first non-empty
// value. Strategy order is the only priority mechanism.
func firstValue(sel *goquery.Selection, strategies []strategy) string {
	for _, s := range strategies {
		if value, ok := s.apply(sel); ok {
			return value
		}
	}
	return ""
}

// unionValues runs every strategy, splits each hit as a delimited list,
// and unions the results preserving first-seen order. Multi-valued
// fields get complementary values from different markup variants, so
// no strategy short-circuits the rest.
func unionValues(sel *goquery.Selection, strategies []strategy) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range strategies {
		sel.Find(s.selector).Each(func(_ int, node *goquery.Selection) {
			for _, value := range textutil.SplitList(node.Text()) {
				if seen[value] {
					continue
				}
				seen[value] = true
				out = append(out, value)
			}
		})
	}
	return out
}

// findContainers picks the result rows out of a document. The first
// container selector that matches anything wins; hits from different
// selectors are never merged since each selector describes a complete
// alternative layout.
func findContainers(doc *goquery.Document) *goquery.Selection {
	for _, selector := range containerSelectors {
		sel := doc.Find(selector)
		if sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

// extractRecord reads one result row. A panic while reading a row is
// contained to that row; the document-level loop keeps going.
func extractRecord(sel *goquery.Selection, base *url.URL, sourceQuery string) (record Record, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("patentscope: record extraction panicked", "err", r)
			ok = false
		}
	}()

	record = Record{
		PublicationNumber: firstValue(sel, publicationStrategies),
		Title:             firstValue(sel, titleStrategies),
		Abstract:          firstValue(sel, abstractStrategies),
		PublicationDate:   firstValue(sel, dateStrategies),
		Applicants:        unionValues(sel, applicantStrategies),
		Inventors:         unionValues(sel, inventorStrategies),
		IPCCodes:          unionValues(sel, ipcStrategies),
		SourceQuery:       sourceQuery,
	}

	link := sel.Find("a[href*=docId]").First()
	if href, exists := link.Attr("href"); exists {
		record.ID = htmlutil.DocID(href)
		if base != nil {
			record.DetailURL = htmlutil.AbsoluteURL(base, href)
		}
	}
	if record.ID == "" {
		record.ID = record.PublicationNumber
	}

	return record, validRecord(record)
}

// ExtractRecords pulls every valid result row out of a search result
// page. Rows that fail validation are dropped silently; an unparseable
// page yields an empty slice, not an error, since the crawler treats
// empty pages as an end-of-results signal.
func ExtractRecords(doc *goquery.Document, base *url.URL, sourceQuery string) []Record {
	containers := findContainers(doc)
	if containers == nil {
		return nil
	}
	var records []Record
	containers.Each(func(_ int, sel *goquery.Selection) {
		if record, ok := extractRecord(sel, base, sourceQuery); ok {
			records = append(records, record)
		}
	})
	return records
}

// ExtractTotalCount reads the total result count off a page. Dedicated
// count elements are tried first; failing those, any text node
// mentioning a count keyword is mined for integers. Either way the
// LARGEST integer found wins, since count text routinely embeds page
// numbers ("Showing 1-10 of 1,523 results").
func ExtractTotalCount(doc *goquery.Document) (int, bool) {
	for _, s := range totalCountStrategies {
		text := doc.Find(s.selector).First().Text()
		if n, ok := textutil.MaxInteger(text); ok {
			return n, true
		}
	}

	total := 0
	found := false
	doc.Find("span, div, p").Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		if !textutil.ContainsKeyword(text, totalCountKeywords) {
			return
		}
		if n, ok := textutil.MaxInteger(text); ok && n > total {
			total = n
			found = true
		}
	})
	return total, found
}

// hasNextControl reports whether the page shows an enabled next-page
// control. Absence only means the control went undetected, so the
// crawler treats this as advisory alongside the page count heuristics.
func hasNextControl(doc *goquery.Document) bool {
	for _, selector := range nextControlSelectors {
		var enabled bool
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if sel.HasClass("disabled") || sel.AttrOr("aria-disabled", "") == "true" {
				return true
			}
			enabled = true
			return false
		})
		if enabled {
			return true
		}
	}
	return false
}

// extractPage gathers everything the crawler needs from a single
// result document.
func extractPage(doc *goquery.Document, base *url.URL, sourceQuery string, pageIndex int) PageResult {
	page := PageResult{
		Records:   ExtractRecords(doc, base, sourceQuery),
		PageIndex: pageIndex,
		HasMore:   hasNextControl(doc),
	}
	page.Total, page.TotalKnown = ExtractTotalCount(doc)
	return page
}
