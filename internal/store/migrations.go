package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/salacoste/swagger-mcp-server/internal/logging"
)

// migration is one forward-only schema step, carrying the SQL that applies
// it and the SQL that would undo it for out-of-band recovery (never run
// automatically by this package).
type migration struct {
	Version     int
	Description string
	Up          string
	Down        string
}

// migrations lists every schema version in order, starting at 1. Adding a
// new version means appending here; existing entries are never edited
// once released; a field needing to change gets its own later version.
var migrations = []migration{
	{
		Version:     1,
		Description: "initial relational schema: apis, schemas, security_schemes, endpoints, endpoint_dependencies, endpoint_categories",
		Up:          schemaV1Up,
		Down:        schemaV1Down,
	},
	{
		Version:     2,
		Description: "full-text search virtual tables and mirroring triggers for endpoints and schemas",
		Up:          schemaV2Up,
		Down:        schemaV2Down,
	},
}

// migrate applies every migration newer than the database's recorded
// schema version, inside one transaction per migration, and records the
// applied version with a checksum of its Up SQL.
func (s *Store) migrate() error {
	timer := logging.StartTimer(logging.CategoryStore, "migrate")
	defer timer.Stop()

	if _, err := s.db.Exec(migrationsTableDDL); err != nil {
		return fmt.Errorf("create database_migrations table: %w", err)
	}

	current, err := s.schemaVersion()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := s.applyMigration(m); err != nil {
			return fmt.Errorf("migration v%d (%s): %w", m.Version, m.Description, err)
		}
		logging.Store("applied migration v%d: %s", m.Version, m.Description)
	}
	return nil
}

func (s *Store) schemaVersion() (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(version) FROM database_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(version.Int64), nil
}

func (s *Store) applyMigration(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.Up); err != nil {
		return fmt.Errorf("apply up sql: %w", err)
	}

	checksum := checksumOf(m.Up)
	_, err = tx.Exec(
		`INSERT INTO database_migrations (version, description, checksum, applied_at, rollback_sql) VALUES (?, ?, ?, ?, ?)`,
		m.Version, m.Description, checksum, time.Now().UTC().Format(time.RFC3339), m.Down,
	)
	if err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}

func checksumOf(sqlText string) string {
	sum := sha256.Sum256([]byte(sqlText))
	return hex.EncodeToString(sum[:])
}

const migrationsTableDDL = `
CREATE TABLE IF NOT EXISTS database_migrations (
	version      INTEGER PRIMARY KEY,
	description  TEXT NOT NULL,
	checksum     TEXT NOT NULL,
	applied_at   TEXT NOT NULL,
	rollback_sql TEXT NOT NULL
)`

const schemaV1Up = `
CREATE TABLE apis (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	title            TEXT NOT NULL,
	version          TEXT NOT NULL,
	dialect          TEXT NOT NULL,
	description      TEXT,
	contact_name     TEXT,
	contact_email    TEXT,
	license_name     TEXT,
	license_url      TEXT,
	servers_json     TEXT,
	content_hash     TEXT NOT NULL,
	source_file_path TEXT NOT NULL,
	byte_size        INTEGER NOT NULL,
	ingested_at      TEXT NOT NULL
);
CREATE UNIQUE INDEX idx_apis_content_hash ON apis(content_hash);
CREATE INDEX idx_apis_title_version ON apis(title, version);

CREATE TABLE schemas (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	api_id            INTEGER NOT NULL REFERENCES apis(id) ON DELETE CASCADE,
	name              TEXT NOT NULL,
	type              TEXT,
	title             TEXT,
	description       TEXT,
	deprecated        INTEGER NOT NULL DEFAULT 0,
	reference_count   INTEGER NOT NULL DEFAULT 0,
	dependencies_json TEXT,
	searchable_text   TEXT,
	body_json         TEXT NOT NULL,
	UNIQUE(api_id, name)
);
CREATE INDEX idx_schemas_type ON schemas(type);
CREATE INDEX idx_schemas_deprecated ON schemas(deprecated);
CREATE INDEX idx_schemas_reference_count ON schemas(reference_count);

CREATE TABLE security_schemes (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	api_id          INTEGER NOT NULL REFERENCES apis(id) ON DELETE CASCADE,
	name            TEXT NOT NULL,
	type            TEXT NOT NULL,
	reference_count INTEGER NOT NULL DEFAULT 0,
	body_json       TEXT NOT NULL,
	UNIQUE(api_id, name)
);
CREATE INDEX idx_security_schemes_type ON security_schemes(type);

CREATE TABLE endpoints (
	id                       INTEGER PRIMARY KEY AUTOINCREMENT,
	api_id                   INTEGER NOT NULL REFERENCES apis(id) ON DELETE CASCADE,
	path                     TEXT NOT NULL,
	method                   TEXT NOT NULL,
	operation_id             TEXT,
	synthesized_operation_id INTEGER NOT NULL DEFAULT 0,
	summary                  TEXT,
	description              TEXT,
	deprecated               INTEGER NOT NULL DEFAULT 0,
	category_key             TEXT,
	category_group           TEXT,
	tags_json                TEXT,
	parameters_json          TEXT,
	request_body_json        TEXT,
	responses_json           TEXT,
	security_json            TEXT,
	extensions_json          TEXT,
	searchable_text          TEXT,
	parameter_names_json     TEXT,
	response_codes_json      TEXT,
	content_types_json       TEXT,
	schema_dependencies_json TEXT,
	UNIQUE(api_id, path, method)
);
CREATE INDEX idx_endpoints_api_id ON endpoints(api_id);
CREATE INDEX idx_endpoints_method ON endpoints(method);
CREATE INDEX idx_endpoints_path ON endpoints(path);
CREATE INDEX idx_endpoints_operation_id ON endpoints(operation_id);
CREATE INDEX idx_endpoints_deprecated ON endpoints(deprecated);

CREATE TABLE endpoint_dependencies (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	endpoint_id INTEGER NOT NULL REFERENCES endpoints(id) ON DELETE CASCADE,
	schema_id   INTEGER NOT NULL REFERENCES schemas(id) ON DELETE CASCADE,
	role        TEXT NOT NULL,
	status_code TEXT,
	UNIQUE(endpoint_id, schema_id, role, status_code)
);

CREATE TABLE endpoint_categories (
	id                       INTEGER PRIMARY KEY AUTOINCREMENT,
	api_id                   INTEGER NOT NULL REFERENCES apis(id) ON DELETE CASCADE,
	category_key             TEXT NOT NULL,
	display_name             TEXT,
	category_group           TEXT,
	endpoint_count           INTEGER NOT NULL DEFAULT 0,
	method_distribution_json TEXT,
	UNIQUE(api_id, category_key)
);
`

const schemaV1Down = `
DROP TABLE IF EXISTS endpoint_categories;
DROP TABLE IF EXISTS endpoint_dependencies;
DROP TABLE IF EXISTS endpoints;
DROP TABLE IF EXISTS security_schemes;
DROP TABLE IF EXISTS schemas;
DROP TABLE IF EXISTS apis;
`

const schemaV2Up = `
CREATE VIRTUAL TABLE endpoints_fts USING fts5(
	path, summary, description, operation_id, searchable_text,
	content='endpoints', content_rowid='id', tokenize='porter ascii'
);
CREATE TRIGGER endpoints_ai AFTER INSERT ON endpoints BEGIN
	INSERT INTO endpoints_fts(rowid, path, summary, description, operation_id, searchable_text)
	VALUES (new.id, new.path, new.summary, new.description, new.operation_id, new.searchable_text);
END;
CREATE TRIGGER endpoints_ad AFTER DELETE ON endpoints BEGIN
	INSERT INTO endpoints_fts(endpoints_fts, rowid, path, summary, description, operation_id, searchable_text)
	VALUES ('delete', old.id, old.path, old.summary, old.description, old.operation_id, old.searchable_text);
END;
CREATE TRIGGER endpoints_au AFTER UPDATE ON endpoints BEGIN
	INSERT INTO endpoints_fts(endpoints_fts, rowid, path, summary, description, operation_id, searchable_text)
	VALUES ('delete', old.id, old.path, old.summary, old.description, old.operation_id, old.searchable_text);
	INSERT INTO endpoints_fts(rowid, path, summary, description, operation_id, searchable_text)
	VALUES (new.id, new.path, new.summary, new.description, new.operation_id, new.searchable_text);
END;

CREATE VIRTUAL TABLE schemas_fts USING fts5(
	name, title, description, searchable_text,
	content='schemas', content_rowid='id', tokenize='porter ascii'
);
CREATE TRIGGER schemas_ai AFTER INSERT ON schemas BEGIN
	INSERT INTO schemas_fts(rowid, name, title, description, searchable_text)
	VALUES (new.id, new.name, new.title, new.description, new.searchable_text);
END;
CREATE TRIGGER schemas_ad AFTER DELETE ON schemas BEGIN
	INSERT INTO schemas_fts(schemas_fts, rowid, name, title, description, searchable_text)
	VALUES ('delete', old.id, old.name, old.title, old.description, old.searchable_text);
END;
CREATE TRIGGER schemas_au AFTER UPDATE ON schemas BEGIN
	INSERT INTO schemas_fts(schemas_fts, rowid, name, title, description, searchable_text)
	VALUES ('delete', old.id, old.name, old.title, old.description, old.searchable_text);
	INSERT INTO schemas_fts(rowid, name, title, description, searchable_text)
	VALUES (new.id, new.name, new.title, new.description, new.searchable_text);
END;
`

const schemaV2Down = `
DROP TRIGGER IF EXISTS schemas_au;
DROP TRIGGER IF EXISTS schemas_ad;
DROP TRIGGER IF EXISTS schemas_ai;
DROP TABLE IF EXISTS schemas_fts;
DROP TRIGGER IF EXISTS endpoints_au;
DROP TRIGGER IF EXISTS endpoints_ad;
DROP TRIGGER IF EXISTS endpoints_ai;
DROP TABLE IF EXISTS endpoints_fts;
`
