package patentstore

// Schema is idempotent so it can be applied on every open.
const Schema = `
CREATE TABLE IF NOT EXISTS patent (
	publication_number TEXT PRIMARY KEY,
	patent_id TEXT NOT NULL,
	title TEXT NOT NULL,
	abstract TEXT NOT NULL DEFAULT '',
	publication_date TEXT NOT NULL DEFAULT '',
	applicants TEXT NOT NULL DEFAULT '[]',
	inventors TEXT NOT NULL DEFAULT '[]',
	ipc_codes TEXT NOT NULL DEFAULT '[]',
	detail_url TEXT NOT NULL DEFAULT '',
	source_query TEXT NOT NULL DEFAULT '',
	scraped_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS search (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	raw_input TEXT NOT NULL,
	query TEXT NOT NULL,
	total_results INTEGER NOT NULL,
	record_count INTEGER NOT NULL,
	pages INTEGER NOT NULL,
	stop_reason TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_patent_scraped_at ON patent (scraped_at);
CREATE INDEX IF NOT EXISTS idx_search_created_at ON search (created_at);
`
