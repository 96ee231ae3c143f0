package db

// tables.
const (
	tableURLs         Table = "urls"
	tableEvents       Table = "events"
	tableCurrentTabs  Table = "current_tabs"
	tablePredictions  Table = "predictions"
	tableTrainingData Table = "training_data"
)

type Schema struct {
	Name  Table
	SQL   string
	Index []string
}

// schemaURLs holds one row per unique url.
var schemaURLs = Schema{
	Name: tableURLs,
	SQL: `
		CREATE TABLE IF NOT EXISTS urls (
				id               INTEGER PRIMARY KEY AUTOINCREMENT,
				url              TEXT    NOT NULL,
				title            TEXT    NOT NULL DEFAULT '',
				domain           TEXT    NOT NULL DEFAULT '',
				category         INTEGER NOT NULL DEFAULT 0,
				first_seen       INTEGER NOT NULL DEFAULT 0,
				last_categorized INTEGER NOT NULL DEFAULT 0,
				last_accessed    INTEGER NOT NULL DEFAULT 0,
				favicon          TEXT    NOT NULL DEFAULT '',
				saved_date       INTEGER NOT NULL DEFAULT 0,
				first_opened     INTEGER NOT NULL DEFAULT 0,
				last_opened      INTEGER NOT NULL DEFAULT 0
		);`,
	Index: []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_urls_url ON urls(url);`,
		`CREATE INDEX IF NOT EXISTS idx_urls_category ON urls(category);`,
		`CREATE INDEX IF NOT EXISTS idx_urls_last_accessed ON urls(last_accessed);`,
	},
}

// schemaEvents holds the open/close sessions. url_id integrity is kept by
// the store methods, not by foreign keys.
var schemaEvents = Schema{
	Name: tableEvents,
	SQL: `
		CREATE TABLE IF NOT EXISTS events (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				url_id     INTEGER NOT NULL,
				tab_id     INTEGER,
				open_time  INTEGER NOT NULL DEFAULT 0,
				close_time INTEGER NOT NULL DEFAULT 0
		);`,
	Index: []string{
		`CREATE INDEX IF NOT EXISTS idx_events_url_id ON events(url_id);`,
		`CREATE INDEX IF NOT EXISTS idx_events_close_time ON events(close_time);`,
		`CREATE INDEX IF NOT EXISTS idx_events_url_close ON events(url_id, close_time);`,
	},
}

// schemaCurrentTabs holds the live tabs; sets are JSON arrays.
var schemaCurrentTabs = Schema{
	Name: tableCurrentTabs,
	SQL: `
		CREATE TABLE IF NOT EXISTS current_tabs (
				id             INTEGER PRIMARY KEY AUTOINCREMENT,
				url            TEXT    NOT NULL,
				title          TEXT    NOT NULL DEFAULT '',
				domain         TEXT    NOT NULL DEFAULT '',
				favicon        TEXT    NOT NULL DEFAULT '',
				first_opened   INTEGER NOT NULL DEFAULT 0,
				last_opened    INTEGER NOT NULL DEFAULT 0,
				last_accessed  INTEGER NOT NULL DEFAULT 0,
				open_count     INTEGER NOT NULL DEFAULT 0,
				tab_ids        TEXT    NOT NULL DEFAULT '[]',
				window_ids     TEXT    NOT NULL DEFAULT '[]',
				tab_open_times TEXT    NOT NULL DEFAULT '{}'
		);`,
	Index: []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_current_tabs_url ON current_tabs(url);`,
	},
}

// schemaPredictions holds ML predictions per url.
var schemaPredictions = Schema{
	Name: tablePredictions,
	SQL: `
		CREATE TABLE IF NOT EXISTS predictions (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				url        TEXT    NOT NULL,
				category   INTEGER NOT NULL DEFAULT 0,
				confidence REAL    NOT NULL DEFAULT 0,
				created_at INTEGER NOT NULL DEFAULT 0
		);`,
	Index: []string{
		`CREATE INDEX IF NOT EXISTS idx_predictions_url ON predictions(url);`,
	},
}

// schemaTrainingData holds ML training samples per url.
var schemaTrainingData = Schema{
	Name: tableTrainingData,
	SQL: `
		CREATE TABLE IF NOT EXISTS training_data (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				url        TEXT    NOT NULL,
				category   INTEGER NOT NULL DEFAULT 0,
				created_at INTEGER NOT NULL DEFAULT 0
		);`,
	Index: []string{
		`CREATE INDEX IF NOT EXISTS idx_training_data_url ON training_data(url);`,
	},
}
