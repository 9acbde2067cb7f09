package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kalambet/wellbuddy/internal/sealer"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding moods, chat messages, settings and
// the crisis alert log. Moods and messages are append-only.
type Store struct {
	db     *sql.DB
	sealer sealer.Sealer
}

// Option configures a Store at open time.
type Option func(*Store)

// WithSealer seals chat content before insert and opens it after read.
func WithSealer(s sealer.Sealer) Option {
	return func(st *Store) { st.sealer = s }
}

// Open opens (or creates) the SQLite database file at path and runs pending
// migrations. Pass ":memory:" for an in-memory database (used by tests).
func Open(path string, opts ...Option) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Single connection: concurrent writers serialize in the driver.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db, sealer: sealer.Plain{}}
	for _, o := range opts {
		o(s)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies embedded SQL migrations that haven't been run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Moods ---

func (s *Store) SaveMood(m MoodEntry) error {
	_, err := s.db.Exec(`INSERT INTO moods (date, score, category) VALUES (?, ?, ?)`,
		m.Date, m.Score, m.Category)
	return err
}

// ListMoods returns every mood entry in insertion order.
func (s *Store) ListMoods() ([]MoodEntry, error) {
	rows, err := s.db.Query(`SELECT date, score, category FROM moods ORDER BY rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []MoodEntry{}
	for rows.Next() {
		var m MoodEntry
		if err := rows.Scan(&m.Date, &m.Score, &m.Category); err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// --- Messages ---

func (s *Store) SaveMessage(m ChatMessage) error {
	content, err := s.sealer.Seal(m.Content)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO messages (role, content) VALUES (?, ?)`, string(m.Role), content)
	return err
}

// RecentMessages returns up to limit of the newest messages, oldest first.
func (s *Store) RecentMessages(limit int) ([]ChatMessage, error) {
	rows, err := s.db.Query(`SELECT role, content FROM messages ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	msgs, err := s.scanMessages(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// ListMessages pages through the whole conversation in insertion order.
func (s *Store) ListMessages(limit, offset int) ([]ChatMessage, error) {
	rows, err := s.db.Query(`SELECT role, content FROM messages ORDER BY rowid ASC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.scanMessages(rows)
}

func (s *Store) scanMessages(rows *sql.Rows) ([]ChatMessage, error) {
	defer rows.Close()

	results := []ChatMessage{}
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, err
		}
		opened, err := s.sealer.Open(content)
		if err != nil {
			// Rows written before a key was configured are plaintext.
			slog.Warn("could not open stored message, returning raw content", "error", err)
			opened = content
		}
		results = append(results, ChatMessage{Role: Role(role), Content: opened})
	}
	return results, rows.Err()
}

// --- Settings ---

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// DeleteSetting removes key. Deleting a missing key is not an error.
func (s *Store) DeleteSetting(key string) error {
	_, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}

// --- Crisis alerts ---

// SaveAlert appends a dispatch outcome. A missing ID or timestamp is filled in.
func (s *Store) SaveAlert(a AlertRecord) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO crisis_alerts (id, created_at, recipient, delivered, error)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.CreatedAt.UTC().Format(time.RFC3339Nano), a.Recipient, boolToInt(a.Delivered), a.Error,
	)
	return err
}

// ListAlerts returns up to limit alerts, newest first.
func (s *Store) ListAlerts(limit int) ([]AlertRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, recipient, delivered, error
		FROM crisis_alerts ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []AlertRecord{}
	for rows.Next() {
		var a AlertRecord
		var createdAt string
		var delivered int
		if err := rows.Scan(&a.ID, &createdAt, &a.Recipient, &delivered, &a.Error); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		a.CreatedAt = t
		a.Delivered = delivered != 0
		results = append(results, a)
	}
	return results, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
