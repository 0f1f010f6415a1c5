package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ersonp/feather/internal/domain/entities"
)

const suggestionColumns = `id, user_id, username, name, status, reason, created_at, decided_at`

// SaveSuggestion stores a new suggestion. A second suggestion of the same
// subject by the same user returns entities.ErrDuplicate.
func (r *Repository) SaveSuggestion(ctx context.Context, s *entities.Suggestion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO suggestions (id, user_id, username, name, normalized_name, status, reason, created_at, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.ID,
		s.UserID,
		nullString(s.Username),
		s.Subject.Name,
		s.Subject.NormalizedName,
		string(s.Status),
		nullString(s.Reason),
		s.CreatedAt.UTC(),
		nullTime(s.DecidedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("saving suggestion: %w", entities.ErrDuplicate)
		}
		return fmt.Errorf("saving suggestion: %w", err)
	}
	return nil
}

// FindSuggestion finds a suggestion by ID. Returns nil if not found.
func (r *Repository) FindSuggestion(ctx context.Context, id string) (*entities.Suggestion, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+suggestionColumns+` FROM suggestions WHERE id = ?`, id)
	return scanSuggestion(row)
}

// FindSuggestionByUser finds a user's suggestion of a subject. Returns nil if not found.
func (r *Repository) FindSuggestionByUser(ctx context.Context, userID, name string) (*entities.Suggestion, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+suggestionColumns+` FROM suggestions WHERE user_id = ? AND normalized_name = ?`,
		userID, entities.NormalizeName(name),
	)
	return scanSuggestion(row)
}

// ListSuggestions returns suggestions with the status, oldest first.
func (r *Repository) ListSuggestions(ctx context.Context, status entities.SuggestionStatus, limit int) ([]entities.Suggestion, error) {
	return r.querySuggestions(ctx,
		`SELECT `+suggestionColumns+` FROM suggestions WHERE status = ? ORDER BY created_at, rowid LIMIT ?`,
		string(status), sqlLimit(limit),
	)
}

// ListSuggestionsByUser returns a user's suggestions, newest first.
func (r *Repository) ListSuggestionsByUser(ctx context.Context, userID string, limit int) ([]entities.Suggestion, error) {
	return r.querySuggestions(ctx,
		`SELECT `+suggestionColumns+` FROM suggestions WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		userID, sqlLimit(limit),
	)
}

// CountSuggestionsSince counts a user's suggestions created at or after since.
func (r *Repository) CountSuggestionsSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM suggestions WHERE user_id = ? AND created_at >= ?`,
		userID, since.UTC(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting suggestions: %w", err)
	}
	return n, nil
}

// UpdateSuggestionStatus changes the status of a suggestion.
func (r *Repository) UpdateSuggestionStatus(ctx context.Context, id string, status entities.SuggestionStatus, reason string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE suggestions SET status = ?, reason = ?, decided_at = ? WHERE id = ?`,
		string(status), nullString(reason), at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating suggestion: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("suggestion %s: %w", id, entities.ErrNotFound)
	}
	return nil
}

func (r *Repository) querySuggestions(ctx context.Context, query string, args ...any) ([]entities.Suggestion, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying suggestions: %w", err)
	}
	defer rows.Close()

	var out []entities.Suggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSuggestion(row rowScanner) (*entities.Suggestion, error) {
	var (
		s         entities.Suggestion
		name      string
		status    string
		username  sql.NullString
		reason    sql.NullString
		decidedAt sql.NullTime
	)
	err := row.Scan(&s.ID, &s.UserID, &username, &name, &status, &reason, &s.CreatedAt, &decidedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning suggestion: %w", err)
	}
	s.Subject = entities.NewSubject(name)
	s.Status = entities.SuggestionStatus(status)
	s.Username = username.String
	s.Reason = reason.String
	if decidedAt.Valid {
		t := decidedAt.Time
		s.DecidedAt = &t
	}
	return &s, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
