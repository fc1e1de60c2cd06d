// Package export writes crawled patent records to files: a JSON
// document grouping records by publication number, and a flat CSV of
// the same rows for spreadsheet use.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"patsearch-backend/lib/scrapers/patentscope"
)

// Document is the top-level shape of a JSON export.
type Document struct {
	ScrapedAt   time.Time                     `json:"scraped_at"`
	SourceQuery string                        `json:"source_query,omitempty"`
	Count       int                           `json:"count"`
	Patents     map[string]patentscope.Record `json:"patents"`
}

// NewDocument groups records by publication number. Records without a
// key are dropped; duplicate keys keep the first occurrence, matching
// the crawl's dedupe policy.
func NewDocument(records []patentscope.Record, sourceQuery string, at time.Time) Document {
	patents := make(map[string]patentscope.Record, len(records))
	for _, r := range records {
		key := r.Key()
		if key == "" {
			continue
		}
		if _, exists := patents[key]; exists {
			continue
		}
		patents[key] = r
	}
	return Document{
		ScrapedAt:   at,
		SourceQuery: sourceQuery,
		Count:       len(patents),
		Patents:     patents,
	}
}

// WriteJSON writes the grouped document, indented for human reading.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteJSONFile writes the grouped document to path, truncating any
// existing file.
func WriteJSONFile(path string, doc Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteJSON(f, doc)
}

var csvHeader = []string{
	"publication_number", "patent_id", "title", "abstract",
	"publication_date", "applicants", "inventors", "ipc_codes",
	"detail_url", "source_query",
}

func csvRow(r patentscope.Record) []string {
	return []string{
		r.PublicationNumber,
		r.ID,
		r.Title,
		r.Abstract,
		r.PublicationDate,
		strings.Join(r.Applicants, "; "),
		strings.Join(r.Inventors, "; "),
		strings.Join(r.IPCCodes, "; "),
		r.DetailURL,
		r.SourceQuery,
	}
}

// WriteCSV writes the records as a flat table with a header row.
func WriteCSV(w io.Writer, records []patentscope.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(csvRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the records as CSV to path.
func WriteCSVFile(path string, records []patentscope.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteCSV(f, records)
}

// CSVAppender writes records incrementally, for long crawls that want
// results on disk before the crawl finishes. The header is written on
// the first Append.
type CSVAppender struct {
	w          *csv.Writer
	headerDone bool
}

func NewCSVAppender(w io.Writer) *CSVAppender {
	return &CSVAppender{w: csv.NewWriter(w)}
}

// Append writes a chunk of records and flushes them to the underlying
// writer.
func (a *CSVAppender) Append(records []patentscope.Record) error {
	if !a.headerDone {
		if err := a.w.Write(csvHeader); err != nil {
			return err
		}
		a.headerDone = true
	}
	for _, r := range records {
		if err := a.w.Write(csvRow(r)); err != nil {
			return err
		}
	}
	a.w.Flush()
	return a.w.Error()
}
