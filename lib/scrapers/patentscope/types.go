// Package patentscope implements the resilient retrieval engine for the
// WIPO PatentScope portal: query construction, rate-limited fetching
// with retry, multi-strategy field extraction from unstable markup,
// the pagination crawl state machine, and result deduplication.
package patentscope

import "patsearch-backend/lib/textutil"

// InputKind is the classification of a raw search input.
type InputKind int

const (
	KindFormula InputKind = iota
	KindSmiles
	KindName
)

func (k InputKind) String() string {
	switch k {
	case KindFormula:
		return "formula"
	case KindSmiles:
		return "smiles"
	case KindName:
		return "name"
	}
	return "unknown"
}

// Portal field codes, per the advanced search syntax.
const (
	FieldFullPatent  = "FP"
	FieldTitle       = "TI"
	FieldAbstract    = "AB"
	FieldClaims      = "CL"
	FieldDescription = "DE"
	FieldInventor    = "IN"
	FieldApplicant   = "PA"
	FieldIPC         = "IC"
	FieldCPC         = "CP"
	FieldPriority    = "PR"
	FieldPublication = "PN"
	FieldApplication = "AN"

	// english-restricted variants used for molecule queries
	FieldEnglishAbstract = "EN_AB"
	FieldEnglishAll      = "EN_ALL"
)

// CountryCodes enumerates the country filters the portal understands.
// Unrecognized codes are passed through to the query best-effort.
var CountryCodes = map[string]string{
	"US": "United States",
	"EP": "European Patent Office",
	"WO": "PCT International",
	"CN": "China",
	"JP": "Japan",
	"KR": "Korea",
	"GB": "United Kingdom",
	"DE": "Germany",
	"FR": "France",
	"CA": "Canada",
	"AU": "Australia",
	"IN": "India",
	"RU": "Russia",
	"BR": "Brazil",
}

// SearchSpec is an immutable description of one crawl. Build it once
// and hand it to the crawler; nothing mutates it afterwards.
type SearchSpec struct {
	RawInput   string
	Kind       InputKind
	Countries  []string
	DateStart  string
	DateEnd    string
	PageSize   int
	MaxResults int
}

// Record is one patent result row.
type Record struct {
	ID                string   `json:"patent_id"`
	PublicationNumber string   `json:"publication_number"`
	Title             string   `json:"title"`
	Abstract          string   `json:"abstract,omitempty"`
	Applicants        []string `json:"applicants"`
	Inventors         []string `json:"inventors"`
	PublicationDate   string   `json:"publication_date,omitempty"`
	IPCCodes          []string `json:"ipc_codes"`
	DetailURL         string   `json:"detail_url,omitempty"`
	SourceQuery       string   `json:"source_query,omitempty"`
}

// Key is the deduplication key: publication number, falling back to the
// extracted identifier.
func (r Record) Key() string {
	if r.PublicationNumber != "" {
		return r.PublicationNumber
	}
	return r.ID
}

// Detail is a Record enriched by the detail view.
type Detail struct {
	Record
	ApplicationNumber string   `json:"application_number,omitempty"`
	ApplicationDate   string   `json:"application_date,omitempty"`
	Claims            string   `json:"claims,omitempty"`
	Description       string   `json:"description,omitempty"`
	CPCCodes          []string `json:"cpc_codes,omitempty"`
}

// PageResult is the outcome of extracting a single result page.
type PageResult struct {
	Records    []Record
	PageIndex  int
	HasMore    bool
	Total      int
	TotalKnown bool
}

// StopReason records why a crawl terminated.
type StopReason int

const (
	StopLimitReached StopReason = iota
	StopNoMoreData
	StopEmptyPageLimit
	StopPageCap
	StopError
)

func (r StopReason) String() string {
	switch r {
	case StopLimitReached:
		return "limit_reached"
	case StopNoMoreData:
		return "no_more_data"
	case StopEmptyPageLimit:
		return "empty_page_limit"
	case StopPageCap:
		return "page_cap"
	case StopError:
		return "error"
	}
	return "unknown"
}

// CrawlResult is everything a finished (or failed) crawl produced.
// Records are normalized, deduplicated, and truncated to the requested
// limit. Err is set only when StopReason is StopError; the records
// accumulated before the failure are still present.
type CrawlResult struct {
	Records    []Record
	Pages      int
	StopReason StopReason
	Total      int
	TotalKnown bool
	Err        error
}

// crawlState is owned by a single crawl and dies with it.
type crawlState struct {
	currentPage           int
	accumulated           []Record
	consecutiveEmptyPages int
	stopped               bool
	stopReason            StopReason
}

const minTitleLength = 5

// validRecord is the acceptance rule for extracted rows: some
// identifier, and a title long enough to not be a stray table cell.
func validRecord(r Record) bool {
	if r.PublicationNumber == "" && r.ID == "" {
		return false
	}
	return len(textutil.NormalizeSpace(r.Title)) >= minTitleLength
}
