package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
	"github.com/ersonp/feather/internal/infrastructure/parsers"
)

// ConflictStrategy defines how to handle subjects already in history.
type ConflictStrategy string

const (
	// ConflictSkip skips records whose subject is already known.
	ConflictSkip ConflictStrategy = "skip"
	// ConflictOverwrite replaces stored facts and appends the post record.
	ConflictOverwrite ConflictStrategy = "overwrite"
)

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun     bool             // Validate without saving
	OnConflict ConflictStrategy // How to handle known subjects
}

// ImportError represents an error for a specific record during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Skipped  int
	// Facts counts the facts stored with imported records.
	Facts int
	// Indexed counts imported records whose facts reached the similarity index.
	Indexed int
	Errors []ImportError
}

// ImportService seeds the history store from exported records.
type ImportService struct {
	history  ports.HistoryStore
	embedder ports.Embedder
	index    ports.FactIndex
	audit    ports.AuditLog
	now      func() time.Time
	logger   *zap.Logger
}

// NewImportService creates a new import service. embedder, index and audit
// may be nil.
func NewImportService(history ports.HistoryStore, embedder ports.Embedder, index ports.FactIndex, audit ports.AuditLog, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		history:  history,
		embedder: embedder,
		index:    index,
		audit:    audit,
		now:      time.Now,
		logger:   logger.Named("import"),
	}
}

// Import validates and imports raw records into the history store.
func (s *ImportService) Import(ctx context.Context, raw []parsers.RawRecord, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	records, validationErrors := s.validateRecords(raw)
	result.Errors = validationErrors

	if len(records) == 0 {
		return result, nil
	}

	if opts.DryRun {
		result.Imported = len(records)
		for i := range records {
			result.Facts += len(records[i].Facts)
		}
		return result, nil
	}

	for i := range records {
		imported, err := s.importRecord(ctx, &records[i], opts.OnConflict)
		if err != nil {
			return nil, fmt.Errorf("importing %s: %w", records[i].Subject.Name, err)
		}
		if !imported {
			result.Skipped++
			continue
		}
		result.Imported++
		result.Facts += len(records[i].Facts)
		if s.indexFacts(ctx, &records[i]) {
			result.Indexed++
		}
	}

	if s.audit != nil {
		if err := s.audit.LogAction(ctx, entities.ActionHistoryImported, "", map[string]any{
			"imported": result.Imported,
			"skipped":  result.Skipped,
			"facts":    result.Facts,
			"invalid":  len(result.Errors),
		}); err != nil {
			s.logger.Warn("audit log failed", zap.Error(err))
		}
	}

	return result, nil
}

// validateRecords validates raw records and returns valid ones with any errors.
func (s *ImportService) validateRecords(raw []parsers.RawRecord) ([]entities.HistoryRecord, []ImportError) {
	valid := make([]entities.HistoryRecord, 0, len(raw))
	var errors []ImportError
	now := s.now()

	for i := range raw {
		r := &raw[i]
		lineNum := r.LineNum
		if lineNum == 0 {
			lineNum = i + 1
		}

		rec, err := convertRawRecord(r, lineNum, now)
		if err != nil {
			errors = append(errors, *err)
			continue
		}
		valid = append(valid, rec)
	}

	return valid, errors
}

// convertRawRecord validates a raw record and converts it to a HistoryRecord.
func convertRawRecord(raw *parsers.RawRecord, lineNum int, now time.Time) (entities.HistoryRecord, *ImportError) {
	subject := entities.NewSubject(raw.Subject)
	if subject.IsZero() {
		return entities.HistoryRecord{}, &ImportError{Line: lineNum, Field: "subject", Message: "missing required field: subject"}
	}

	postedAt := now
	if raw.PostedAt != "" {
		t, err := parsePostedAt(raw.PostedAt)
		if err != nil {
			return entities.HistoryRecord{}, &ImportError{
				Line:    lineNum,
				Field:   "posted_at",
				Value:   raw.PostedAt,
				Message: fmt.Sprintf("invalid posted_at %q (use RFC 3339 or YYYY-MM-DD)", raw.PostedAt),
			}
		}
		postedAt = t
	}

	facts := make([]string, 0, len(raw.Facts))
	for _, f := range raw.Facts {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !entities.WithinFactBounds(f) {
			return entities.HistoryRecord{}, &ImportError{
				Line:    lineNum,
				Field:   "facts",
				Value:   f,
				Message: fmt.Sprintf("fact must be %d-%d characters", entities.MinFactLen, entities.MaxFactLen),
			}
		}
		facts = append(facts, f)
	}

	id := raw.ID
	if id == "" {
		id = uuid.New().String()
	}

	return entities.HistoryRecord{
		ID:       id,
		Subject:  subject,
		Facts:    facts,
		ImageURL: strings.TrimSpace(raw.ImageURL),
		PostedAt: postedAt,
	}, nil
}

func parsePostedAt(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

// importRecord stores one record. It reports false when the record was
// skipped as a conflict.
func (s *ImportService) importRecord(ctx context.Context, rec *entities.HistoryRecord, onConflict ConflictStrategy) (bool, error) {
	known, err := s.history.IsKnown(ctx, rec.Subject.Name)
	if err != nil {
		return false, fmt.Errorf("checking history: %w", err)
	}
	if known && onConflict != ConflictOverwrite {
		return false, nil
	}

	if err := s.history.Add(ctx, rec.Subject); err != nil {
		return false, fmt.Errorf("adding subject: %w", err)
	}
	if len(rec.Facts) > 0 {
		if err := s.history.SaveFacts(ctx, rec.Subject.NormalizedName, rec.Facts); err != nil {
			return false, fmt.Errorf("saving facts: %w", err)
		}
	}
	if err := s.history.RecordPost(ctx, *rec); err != nil {
		return false, fmt.Errorf("recording post: %w", err)
	}

	return true, nil
}

// indexFacts adds the record's facts to the similarity index and reports
// whether they landed there. Failures are logged; the history store is the
// source of truth.
func (s *ImportService) indexFacts(ctx context.Context, rec *entities.HistoryRecord) bool {
	if s.embedder == nil || s.index == nil || len(rec.Facts) == 0 {
		return false
	}
	vectors, err := s.embedder.EmbedBatch(ctx, rec.Facts)
	if err != nil {
		s.logger.Warn("embedding imported facts failed", zap.String("subject", rec.Subject.Name), zap.Error(err))
		return false
	}
	if err := s.index.Index(ctx, rec.Subject.Name, rec.Facts, vectors); err != nil {
		s.logger.Warn("indexing imported facts failed", zap.String("subject", rec.Subject.Name), zap.Error(err))
		return false
	}
	return true
}
