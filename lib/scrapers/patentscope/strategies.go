package patentscope

import "regexp"

// The portal's markup changes without notice, so no field is read from
// a single selector. Every field carries an ordered list of named
// strategies; adding support for a new markup variant means appending
// a row to a table here, never touching the extraction control flow.

// strategy resolves a field from a node: either a CSS selector
// (optionally reading an attribute instead of text), or a regex over
// the node's raw text as a last-resort fallback.
type strategy struct {
	name     string
	selector string
	attr     string
	pattern  *regexp.Regexp
}

// containerSelectors locate the result set within a document. The
// first selector matching one or more elements wins; results from
// different container selectors are never merged, only one structural
// layout is active per document.
var containerSelectors = []string{
	"table.resultListTable tr.resultListEvenRow, table.resultListTable tr.resultListOddRow",
	".result-item",
	".patent-result",
	"tr.data-row",
	"div[class*=result]",
	"tr[class*=resultList]",
	"div[id*=result]",
	".resultSet > div",
	"table.resultTable tr",
}

var publicationNumberPattern = regexp.MustCompile(
	`\b(?:WO|US|EP|CN|JP|KR|GB|DE|FR|CA|AU|IN|RU|BR)[ /-]?\d{4}[ /-]?\d+\s?(?:[A-C]\d?)?\b`,
)

var publicationStrategies = []strategy{
	{name: "css:publication-number", selector: ".publication-number"},
	{name: "css:pub-number", selector: ".pub-number"},
	{name: "css:detail-link-span", selector: "a[href*=docId] span.notranslate"},
	{name: "css:docid", selector: ".docId"},
	{name: "css:number-cell", selector: "td.number"},
	{name: "css:number-span", selector: "span[class*=number]"},
	{name: "pattern:publication", pattern: publicationNumberPattern},
}

var titleStrategies = []strategy{
	{name: "css:title", selector: ".title"},
	{name: "css:h3", selector: "h3"},
	{name: "css:patent-title", selector: ".patent-title"},
	{name: "css:detail-link", selector: "a[href*=docId]"},
	{name: "css:title-cell", selector: "td.title"},
	{name: "css:title-class", selector: "div[class*=title]"},
}

var dateStrategies = []strategy{
	{name: "css:publication-date", selector: ".publication-date"},
	{name: "css:pub-date", selector: ".pub-date"},
	{name: "css:date-cell", selector: "td.date"},
	{name: "css:date-span", selector: "span[class*=date]"},
}

var abstractStrategies = []strategy{
	{name: "css:abstract", selector: ".abstract"},
	{name: "css:summary", selector: ".summary"},
	{name: "css:abstract-class", selector: "div[class*=abstract]"},
	{name: "css:abstract-cell", selector: "td.abstract"},
}

// Multi-valued fields union every strategy's results instead of taking
// the first hit: markup variants supply complementary values, not
// conflicting ones.
var applicantStrategies = []strategy{
	{name: "css:applicant", selector: ".applicant"},
	{name: "css:applicant-name", selector: ".applicant-name"},
	{name: "css:applicant-class", selector: "div[class*=applicant]"},
	{name: "css:applicant-cell", selector: "td.applicant"},
}

var inventorStrategies = []strategy{
	{name: "css:inventor", selector: ".inventor"},
	{name: "css:inventor-name", selector: ".inventor-name"},
	{name: "css:inventor-class", selector: "div[class*=inventor]"},
}

var ipcStrategies = []strategy{
	{name: "css:ipc-code", selector: ".ipc-code"},
	{name: "css:ipc", selector: ".ipc"},
	{name: "css:ipc-span", selector: "span[class*=ipc]"},
}

var totalCountStrategies = []strategy{
	{name: "css:total-results", selector: ".total-results"},
	{name: "css:result-count", selector: ".result-count"},
	{name: "css:total-id", selector: "#totalResults"},
	{name: "css:results-info", selector: ".results-info"},
	{name: "css:total-span", selector: "span[class*=total]"},
	{name: "css:count-class", selector: "div[class*=count]"},
}

// totalCountKeywords guard the free-text fallback for the total count:
// only text nodes mentioning one of these are mined for integers.
var totalCountKeywords = []string{"total", "results", "found"}

// nextControlSelectors detect an enabled "next page" control.
var nextControlSelectors = []string{
	"a.next",
	"a[title*=Next]",
	"a[class*=next]",
	"a[class*=Next]",
}

// detail page strategies

var detailTitleStrategies = []strategy{
	{name: "css:h1-patent-title", selector: "h1.patent-title"},
	{name: "css:title", selector: ".title"},
	{name: "css:h1", selector: "h1"},
	{name: "css:title-class", selector: "div[class*=title]"},
}

var detailAbstractStrategies = []strategy{
	{name: "css:abstract-id", selector: "#abstract"},
	{name: "css:abstract", selector: ".abstract"},
	{name: "css:abstract-named", selector: "div[name=abstract]"},
	{name: "css:abstract-p", selector: "p[class*=abstract]"},
}

var claimsStrategies = []strategy{
	{name: "css:claims-id", selector: "#claims"},
	{name: "css:claims", selector: ".claims"},
	{name: "css:claims-class", selector: "div[class*=claims]"},
}

var descriptionStrategies = []strategy{
	{name: "css:description-id", selector: "#description"},
	{name: "css:description", selector: ".description"},
	{name: "css:description-class", selector: "div[class*=description]"},
}

var cpcStrategies = []strategy{
	{name: "css:cpc-code", selector: ".cpc-code"},
	{name: "css:cpc", selector: ".cpc"},
	{name: "css:cpc-span", selector: "span[class*=cpc]"},
}

var applicationNumberStrategies = []strategy{
	{name: "css:application-number", selector: ".application-number"},
	{name: "css:application-id", selector: "#applicationNumber"},
}

var applicationDateStrategies = []strategy{
	{name: "css:application-date", selector: ".application-date"},
	{name: "css:application-date-id", selector: "#applicationDate"},
}

var detailPublicationStrategies = []strategy{
	{name: "css:publication-number", selector: ".publication-number"},
	{name: "css:publication-id", selector: "#publicationNumber"},
	{name: "pattern:publication", pattern: publicationNumberPattern},
}

var detailDateStrategies = []strategy{
	{name: "css:publication-date", selector: ".publication-date"},
	{name: "css:publication-date-id", selector: "#publicationDate"},
}
