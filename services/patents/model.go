package patents

import (
	"time"

	"patsearch-backend/lib/scrapers/patentscope"
)

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Molecule   string   `json:"molecule"`
	SearchType string   `json:"search_type,omitempty"`
	Page       int      `json:"page,omitempty"`
	PageSize   int      `json:"page_size,omitempty"`
	Countries  []string `json:"countries,omitempty"`
	DateStart  string   `json:"date_start,omitempty"`
	DateEnd    string   `json:"date_end,omitempty"`
}

// ScoredRecord is a crawl record annotated with an advisory relevance
// score in [0,1].
type ScoredRecord struct {
	patentscope.Record
	RelevanceScore float64 `json:"relevance_score"`
}

type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	PageSize     int  `json:"pageSize"`
	TotalResults int  `json:"totalResults"`
	TotalPages   int  `json:"totalPages"`
	HasNext      bool `json:"hasNext"`
	HasPrevious  bool `json:"hasPrevious"`
	NextPage     *int `json:"nextPage,omitempty"`
	PreviousPage *int `json:"previousPage,omitempty"`
}

type SearchResponse struct {
	Status     string         `json:"status"`
	Records    []ScoredRecord `json:"records"`
	Pagination Pagination     `json:"pagination"`
	StopReason string         `json:"stop_reason,omitempty"`
	DurationMs int64          `json:"duration_ms"`
	ScrapedAt  time.Time      `json:"scraped_at"`
	Error      string         `json:"error,omitempty"`
}
