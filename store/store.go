// Package store keeps versioned snapshots of documents in a SQLite
// database.
//
// Every Save of a name adds a new version; earlier versions stay readable.
// The plain text of each snapshot is indexed for substring search.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tsawler/gridtable/model"
)

// ErrNotFound is returned when a name or version has no snapshot
var ErrNotFound = errors.New("document not found")

// Version describes one stored snapshot
type Version struct {
	Name    string
	Version int
	Saved   time.Time
	Tables  int // number of grid and simple tables in the snapshot
}

// Store is a SQLite-backed snapshot store. It is safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.Mutex // serializes version allocation
}

// Current schema version - increment this when the schema changes
const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS snapshots (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    version INTEGER NOT NULL,
    saved INTEGER NOT NULL,           -- UnixNano
    tables INTEGER NOT NULL,
    body TEXT NOT NULL,               -- document JSON
    content TEXT NOT NULL,            -- plain text for search
    UNIQUE (name, version)
);

CREATE VIRTUAL TABLE IF NOT EXISTS snapshots_fts USING fts5(
    content,
    content='snapshots',
    content_rowid='id',
    tokenize='trigram'
);

CREATE TRIGGER IF NOT EXISTS snapshots_ai AFTER INSERT ON snapshots BEGIN
    INSERT INTO snapshots_fts(rowid, content) VALUES (new.id, new.content);
END;

CREATE TRIGGER IF NOT EXISTS snapshots_ad AFTER DELETE ON snapshots BEGIN
    INSERT INTO snapshots_fts(snapshots_fts, rowid, content) VALUES ('delete', old.id, old.content);
END;
`

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if err := checkSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// checkSchema records the schema version of a new database and rejects
// databases written by a newer release
func checkSchema(db *sql.DB) error {
	var current int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	case current > schemaVersion:
		return fmt.Errorf("database schema version %d is newer than %d", current, schemaVersion)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores doc as the next version of name and returns that version,
// starting at 1
func (s *Store) Save(name string, doc *model.Node) (int, error) {
	if name == "" {
		return 0, errors.New("empty document name")
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("encoding document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var latest int
	if err := tx.QueryRow("SELECT COALESCE(MAX(version), 0) FROM snapshots WHERE name = ?", name).Scan(&latest); err != nil {
		return 0, fmt.Errorf("failed to read latest version: %w", err)
	}
	version := latest + 1
	_, err = tx.Exec(
		"INSERT INTO snapshots (name, version, saved, tables, body, content) VALUES (?, ?, ?, ?, ?, ?)",
		name, version, time.Now().UnixNano(), countTables(doc), string(body), doc.TextContent(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return version, nil
}

func countTables(doc *model.Node) int {
	n := 0
	doc.Descendants(0, func(node *model.Node, _ int) bool {
		if node.Type == model.NodeTable || node.Type == model.NodeSimpleTable {
			n++
		}
		return !node.IsTextblock()
	})
	return n
}

// Load returns the latest version of name
func (s *Store) Load(name string) (*model.Node, int, error) {
	var version int
	var body string
	err := s.db.QueryRow(
		"SELECT version, body FROM snapshots WHERE name = ? ORDER BY version DESC LIMIT 1", name,
	).Scan(&version, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load %s: %w", name, err)
	}
	doc, err := decode(body)
	if err != nil {
		return nil, 0, err
	}
	return doc, version, nil
}

// LoadVersion returns one version of name
func (s *Store) LoadVersion(name string, version int) (*model.Node, error) {
	var body string
	err := s.db.QueryRow("SELECT body FROM snapshots WHERE name = ? AND version = ?", name, version).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s version %d: %w", name, version, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s version %d: %w", name, version, err)
	}
	return decode(body)
}

func decode(body string) (*model.Node, error) {
	var doc model.Node
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return &doc, nil
}

// Versions lists the versions of name, oldest first
func (s *Store) Versions(name string) ([]Version, error) {
	rows, err := s.db.Query(
		"SELECT name, version, saved, tables FROM snapshots WHERE name = ? ORDER BY version", name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	versions, err := scanVersions(rows)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return versions, nil
}

// Names lists the stored document names in order
func (s *Store) Names() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT name FROM snapshots ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes every version of name
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec("DELETE FROM snapshots WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return nil
}

// Search returns the snapshots whose text contains query, newest first
func (s *Store) Search(query string, limit int) ([]Version, error) {
	if query == "" {
		return nil, nil
	}

	var rows *sql.Rows
	var err error

	// The trigram tokenizer needs at least 3 characters; shorter queries
	// fall back to LIKE.
	if len([]rune(query)) < 3 {
		pattern := "%" + strings.ReplaceAll(strings.ReplaceAll(query, "%", "\\%"), "_", "\\_") + "%"
		rows, err = s.db.Query(`
			SELECT name, version, saved, tables
			FROM snapshots
			WHERE content LIKE ? ESCAPE '\'
			ORDER BY saved DESC, id DESC
			LIMIT ?
		`, pattern, limit)
	} else {
		quoted := `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
		rows, err = s.db.Query(`
			SELECT s.name, s.version, s.saved, s.tables
			FROM snapshots_fts
			JOIN snapshots s ON s.id = snapshots_fts.rowid
			WHERE snapshots_fts MATCH ?
			ORDER BY s.saved DESC, s.id DESC
			LIMIT ?
		`, quoted, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	return scanVersions(rows)
}

func scanVersions(rows *sql.Rows) ([]Version, error) {
	var versions []Version
	for rows.Next() {
		var v Version
		var saved int64
		if err := rows.Scan(&v.Name, &v.Version, &saved, &v.Tables); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		v.Saved = time.Unix(0, saved)
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
