package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Runs: one row per pipeline execution
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_uuid TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    fingerprint TEXT NOT NULL,      -- sha256 over the three input tables
    referendum_rows INTEGER NOT NULL,
    dropped_rows INTEGER DEFAULT 0,  -- skipped as incomplete
    joined_rows INTEGER NOT NULL,
    excluded_rows INTEGER NOT NULL,  -- no matching department (overseas, abroad)
    region_count INTEGER NOT NULL,
    ratio_definition TEXT NOT NULL,
    output_dir TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint);

-- Region results: aggregated counts per region within a run
CREATE TABLE IF NOT EXISTS region_results (
    result_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    code_reg TEXT NOT NULL,
    name_reg TEXT NOT NULL,
    registered INTEGER NOT NULL,
    abstentions INTEGER NOT NULL,
    null_votes INTEGER NOT NULL,
    choice_a INTEGER NOT NULL,
    choice_b INTEGER NOT NULL,
    ratio REAL,                      -- NULL when the region has no geometry
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    UNIQUE(run_id, code_reg)
);

CREATE INDEX IF NOT EXISTS idx_region_results_run ON region_results(run_id);

-- Excluded codes: department codes left out by the referendum join
CREATE TABLE IF NOT EXISTS excluded_codes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    code TEXT NOT NULL,
    name TEXT,
    row_count INTEGER NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    UNIQUE(run_id, code)
);
`
