// Package sqlite provides the SQLite implementation of the history,
// suggestion and audit stores.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
	"github.com/ersonp/feather/internal/infrastructure/config"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.HistoryStore, ports.SuggestionStore and
// ports.AuditLog using SQLite. Names are keyed by entities.NormalizeName.
type Repository struct {
	db   *sql.DB
	path string
}

var (
	_ ports.HistoryStore    = (*Repository)(nil)
	_ ports.SuggestionStore = (*Repository)(nil)
	_ ports.AuditLog        = (*Repository)(nil)
)

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Subjects ever published or imported
	CREATE TABLE IF NOT EXISTS subjects (
		normalized_name TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Vetted facts per subject, reused on later runs
	CREATE TABLE IF NOT EXISTS facts (
		normalized_name TEXT NOT NULL,
		position INTEGER NOT NULL,
		fact TEXT NOT NULL,
		PRIMARY KEY (normalized_name, position)
	);

	-- Publication records
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		normalized_name TEXT NOT NULL,
		name TEXT NOT NULL,
		facts TEXT,
		image_url TEXT,
		posted_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_posts_subject ON posts(normalized_name);
	CREATE INDEX IF NOT EXISTS idx_posts_posted ON posts(posted_at);

	-- Reader suggestions
	CREATE TABLE IF NOT EXISTS suggestions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		username TEXT,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT,
		created_at TIMESTAMP NOT NULL,
		decided_at TIMESTAMP,
		UNIQUE(user_id, normalized_name)
	);
	CREATE INDEX IF NOT EXISTS idx_suggestions_status ON suggestions(status);
	CREATE INDEX IF NOT EXISTS idx_suggestions_user ON suggestions(user_id, created_at);

	-- Audit log (tracks all actions)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		subject TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_subject ON audit_log(subject);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// IsKnown reports whether a subject with the same normalized name exists.
func (r *Repository) IsKnown(ctx context.Context, name string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subjects WHERE normalized_name = ?`,
		entities.NormalizeName(name),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking subject: %w", err)
	}
	return n > 0, nil
}

// Add records a subject. Adding an existing subject is a no-op.
func (r *Repository) Add(ctx context.Context, subject entities.Subject) error {
	key := subject.NormalizedName
	if key == "" {
		key = entities.NormalizeName(subject.Name)
	}
	if key == "" {
		return fmt.Errorf("adding subject %q: %w", subject.Name, entities.ErrValidationRejected)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subjects (normalized_name, name, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(normalized_name) DO NOTHING`,
		key, subject.Name, timeNow().UTC(),
	)
	if err != nil {
		return fmt.Errorf("adding subject: %w", err)
	}
	return nil
}

// KnownNames returns subject names, most recently posted first, followed by
// never-posted subjects in name order.
func (r *Repository) KnownNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT s.name
		FROM subjects s
		LEFT JOIN (
			SELECT normalized_name, MAX(posted_at) AS last_posted
			FROM posts
			GROUP BY normalized_name
		) p ON p.normalized_name = s.normalized_name
		ORDER BY p.last_posted IS NULL, p.last_posted DESC, s.name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying known names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetFacts returns the stored facts of a subject in saved order.
func (r *Repository) GetFacts(ctx context.Context, name string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT fact FROM facts WHERE normalized_name = ? ORDER BY position`,
		entities.NormalizeName(name),
	)
	if err != nil {
		return nil, fmt.Errorf("querying facts: %w", err)
	}
	defer rows.Close()

	facts := make([]string, 0, entities.MaxFacts)
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("scanning fact: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// SaveFacts replaces the stored facts of a subject.
func (r *Repository) SaveFacts(ctx context.Context, name string, facts []string) error {
	key := entities.NormalizeName(name)
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM facts WHERE normalized_name = ?`, key); err != nil {
			return fmt.Errorf("clearing facts: %w", err)
		}
		for i, f := range facts {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO facts (normalized_name, position, fact) VALUES (?, ?, ?)`,
				key, i, f,
			); err != nil {
				return fmt.Errorf("saving fact: %w", err)
			}
		}
		return nil
	})
}

// RecordPost appends a publication record.
func (r *Repository) RecordPost(ctx context.Context, record entities.HistoryRecord) error {
	if record.ID == "" {
		return fmt.Errorf("recording post: empty id: %w", entities.ErrValidationRejected)
	}
	factsJSON, err := json.Marshal(record.Facts)
	if err != nil {
		return fmt.Errorf("marshaling facts: %w", err)
	}

	key := record.Subject.NormalizedName
	if key == "" {
		key = entities.NormalizeName(record.Subject.Name)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO posts (id, normalized_name, name, facts, image_url, posted_at) VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, key, record.Subject.Name, string(factsJSON), nullString(record.ImageURL), record.PostedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording post: %w", err)
	}
	return nil
}

// RecentHistory returns up to limit records, newest first. A limit of 0
// returns every record.
func (r *Repository) RecentHistory(ctx context.Context, limit int) ([]entities.HistoryRecord, error) {
	query := `
		SELECT id, name, facts, image_url, posted_at
		FROM posts
		ORDER BY posted_at DESC, rowid DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []entities.HistoryRecord
	if limit > 0 {
		records = make([]entities.HistoryRecord, 0, limit)
	}
	for rows.Next() {
		var (
			rec      entities.HistoryRecord
			name     string
			facts    sql.NullString
			imageURL sql.NullString
		)
		if err := rows.Scan(&rec.ID, &name, &facts, &imageURL, &rec.PostedAt); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		rec.Subject = entities.NewSubject(name)
		rec.ImageURL = imageURL.String
		if facts.Valid && facts.String != "" {
			if err := json.Unmarshal([]byte(facts.String), &rec.Facts); err != nil {
				return nil, fmt.Errorf("unmarshaling facts: %w", err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Retract removes a subject, its facts and its post records atomically.
func (r *Repository) Retract(ctx context.Context, name string) error {
	key := entities.NormalizeName(name)
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM subjects WHERE normalized_name = ?`, key)
		if err != nil {
			return fmt.Errorf("deleting subject: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("subject %q: %w", name, entities.ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM facts WHERE normalized_name = ?`, key); err != nil {
			return fmt.Errorf("deleting facts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE normalized_name = ?`, key); err != nil {
			return fmt.Errorf("deleting posts: %w", err)
		}
		return nil
	})
}

// Stats summarizes the stored history.
func (r *Repository) Stats(ctx context.Context) (entities.HistoryStats, error) {
	var stats entities.HistoryStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM subjects),
			(SELECT COUNT(*) FROM posts),
			(SELECT COUNT(DISTINCT normalized_name) FROM facts),
			(SELECT COUNT(*) FROM suggestions WHERE status = ?)
	`, string(entities.SuggestionPending)).Scan(&stats.Subjects, &stats.Posts, &stats.WithFacts, &stats.PendingIdeas)
	if err != nil {
		return stats, fmt.Errorf("counting history: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT name, posted_at FROM posts ORDER BY posted_at DESC, rowid DESC LIMIT 1`,
	).Scan(&stats.LastPostedFor, &stats.LastPostedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return stats, fmt.Errorf("reading last post: %w", err)
	}
	return stats, nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// sqlLimit maps "no limit" to SQLite's -1.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
