// Package patentstore persists crawled patent records and a log of the
// searches that produced them. Records are keyed by publication number;
// pushing an already-stored patent refreshes its fields and timestamp.
package patentstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"patsearch-backend/lib/scrapers/patentscope"
	"patsearch-backend/lib/sqliteutil"
)

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at dsn, a local sqlite path or a
// libsql URL.
func Open(dsn string) (Store, error) {
	db, err := sqliteutil.OpenDB(Schema, dsn)
	if err != nil {
		return Store{}, err
	}
	return Store{db: db}, nil
}

func NewStore(db *sql.DB) Store {
	return Store{db: db}
}

func (s Store) Close() error {
	return s.db.Close()
}

func marshalList(values []string) string {
	if values == nil {
		values = []string{}
	}
	out, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(out)
}

func unmarshalList(ctx context.Context, raw string) []string {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		slog.WarnContext(ctx, "failed to unmarshal stored list", "err", err)
		return nil
	}
	return out
}

// PushRecords upserts a batch of records in one transaction.
func (s Store) PushRecords(ctx context.Context, records []patentscope.Record, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range records {
		if r.Key() == "" {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO patent (
				publication_number, patent_id, title, abstract,
				publication_date, applicants, inventors, ipc_codes,
				detail_url, source_query, scraped_at
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (publication_number) DO UPDATE SET
				patent_id = excluded.patent_id,
				title = excluded.title,
				abstract = excluded.abstract,
				publication_date = excluded.publication_date,
				applicants = excluded.applicants,
				inventors = excluded.inventors,
				ipc_codes = excluded.ipc_codes,
				detail_url = excluded.detail_url,
				source_query = excluded.source_query,
				scraped_at = excluded.scraped_at`,
			r.Key(), r.ID, r.Title, r.Abstract,
			r.PublicationDate, marshalList(r.Applicants),
			marshalList(r.Inventors), marshalList(r.IPCCodes),
			r.DetailURL, r.SourceQuery, at.Unix(),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func scanRecord(ctx context.Context, rows *sql.Rows) (patentscope.Record, error) {
	var r patentscope.Record
	var applicants, inventors, ipcCodes string
	var scrapedAt int64
	err := rows.Scan(
		&r.PublicationNumber, &r.ID, &r.Title, &r.Abstract,
		&r.PublicationDate, &applicants, &inventors, &ipcCodes,
		&r.DetailURL, &r.SourceQuery, &scrapedAt,
	)
	if err != nil {
		return r, err
	}
	r.Applicants = unmarshalList(ctx, applicants)
	r.Inventors = unmarshalList(ctx, inventors)
	r.IPCCodes = unmarshalList(ctx, ipcCodes)
	return r, nil
}

const selectColumns = `
	publication_number, patent_id, title, abstract,
	publication_date, applicants, inventors, ipc_codes,
	detail_url, source_query, scraped_at`

// GetRecord looks one patent up by publication number. The bool
// reports whether it was found.
func (s Store) GetRecord(ctx context.Context, publicationNumber string) (patentscope.Record, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT`+selectColumns+` FROM patent WHERE publication_number = ?`,
		publicationNumber,
	)
	if err != nil {
		return patentscope.Record{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return patentscope.Record{}, false, rows.Err()
	}
	r, err := scanRecord(ctx, rows)
	if err != nil {
		return patentscope.Record{}, false, err
	}
	return r, true, nil
}

// RecentRecords returns the most recently scraped records, newest
// first.
func (s Store) RecentRecords(ctx context.Context, limit int) ([]patentscope.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT`+selectColumns+` FROM patent ORDER BY scraped_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []patentscope.Record
	for rows.Next() {
		r, err := scanRecord(ctx, rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SearchLog is one row of crawl history.
type SearchLog struct {
	RawInput     string
	Query        string
	TotalResults int
	RecordCount  int
	Pages        int
	StopReason   string
	Duration     time.Duration
	CreatedAt    time.Time
}

// LogSearch appends one crawl to the search history.
func (s Store) LogSearch(ctx context.Context, log SearchLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search (
			raw_input, query, total_results, record_count,
			pages, stop_reason, duration_ms, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.RawInput, log.Query, log.TotalResults, log.RecordCount,
		log.Pages, log.StopReason, log.Duration.Milliseconds(),
		log.CreatedAt.Unix(),
	)
	return err
}

// Stats summarizes the store contents.
type Stats struct {
	PatentCount int
	SearchCount int
	LastSearch  time.Time
}

func (s Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM patent`).
		Scan(&stats.PatentCount)
	if err != nil {
		return stats, err
	}

	var lastSearch sql.NullInt64
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(created_at) FROM search`,
	).Scan(&stats.SearchCount, &lastSearch)
	if err != nil {
		return stats, err
	}
	if lastSearch.Valid {
		stats.LastSearch = time.Unix(lastSearch.Int64, 0)
	}
	return stats, nil
}
