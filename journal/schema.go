package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	mode TEXT NOT NULL,
	account TEXT NOT NULL,
	dry_run INTEGER NOT NULL,
	params TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS movements (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	action TEXT NOT NULL,
	current_value REAL NOT NULL,
	target_value REAL NOT NULL,
	amount REAL NOT NULL,
	reason TEXT NOT NULL,
	degraded INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_movements_run ON movements(run_id);
CREATE INDEX IF NOT EXISTS idx_movements_time ON movements(time);
`
