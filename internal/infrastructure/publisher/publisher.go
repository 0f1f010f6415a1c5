// Package publisher delivers content units and quiz rounds to a local sink:
// a human-readable transcript or newline-delimited JSON.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
	"github.com/ersonp/feather/internal/infrastructure/config"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Publisher writes publications to an io.Writer.
type Publisher struct {
	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
	format string
	limit  int
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithCaptionLimit overrides MaxCaptionLength.
func WithCaptionLimit(limit int) Option {
	return func(p *Publisher) {
		if limit > 0 {
			p.limit = limit
		}
	}
}

// New creates a publisher writing to out in the given format.
func New(out io.Writer, format string, opts ...Option) (*Publisher, error) {
	switch format {
	case "":
		format = FormatText
	case FormatText, FormatJSON:
	default:
		return nil, fmt.Errorf("unknown publisher format %q: %w", format, entities.ErrConfiguration)
	}

	p := &Publisher{
		out:    out,
		format: format,
		limit:  MaxCaptionLength,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named("publisher")
	return p, nil
}

// Open creates a publisher from configuration. An empty output path writes
// to stdout; otherwise publications are appended to the file.
func Open(cfg config.PublisherConfig, opts ...Option) (*Publisher, error) {
	if cfg.Output == "" {
		return New(os.Stdout, cfg.Format, opts...)
	}

	f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening publisher output: %w", err)
	}
	p, err := New(f, cfg.Format, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	p.closer = f
	return p, nil
}

// Close closes the output file, if any.
func (p *Publisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

type envelope struct {
	Kind        string                `json:"kind"`
	PublishedAt time.Time             `json:"published_at"`
	Caption     string                `json:"caption,omitempty"`
	Content     *entities.ContentUnit `json:"content,omitempty"`
	Quiz        *entities.QuizRound   `json:"quiz,omitempty"`
}

// PublishContent writes a content unit.
func (p *Publisher) PublishContent(ctx context.Context, unit *entities.ContentUnit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if unit == nil {
		return fmt.Errorf("nil content unit: %w", entities.ErrValidationRejected)
	}

	caption := Caption(unit, p.limit)
	if full := runeLen(captionBody(unit.Subject.Name, unit.Description, unit.Facts, entities.MaxFacts)); full > p.limit {
		p.logger.Warn("caption shortened to fit limit",
			zap.String("subject", unit.Subject.Name),
			zap.Int("length", full),
			zap.Int("limit", p.limit))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	switch p.format {
	case FormatJSON:
		err = p.writeJSON(envelope{Kind: "content", PublishedAt: p.now().UTC(), Caption: caption, Content: unit})
	default:
		if unit.HasImage() {
			_, err = fmt.Fprintf(p.out, "[image] %s\n", unit.Image())
		}
		if err == nil {
			_, err = fmt.Fprintf(p.out, "%s\n\n", caption)
		}
	}
	if err != nil {
		return fmt.Errorf("writing content: %w", err)
	}

	p.logger.Info("content published",
		zap.String("subject", unit.Subject.Name),
		zap.Bool("image", unit.HasImage()))
	return nil
}

// PublishQuiz writes a quiz round.
func (p *Publisher) PublishQuiz(ctx context.Context, quiz *entities.QuizRound) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if quiz == nil {
		return fmt.Errorf("nil quiz: %w", entities.ErrValidationRejected)
	}
	if err := quiz.Validate(); err != nil {
		return fmt.Errorf("invalid quiz: %w: %w", entities.ErrValidationRejected, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	switch p.format {
	case FormatJSON:
		err = p.writeJSON(envelope{Kind: "quiz", PublishedAt: p.now().UTC(), Quiz: quiz})
	default:
		_, err = fmt.Fprintf(p.out, "%s\n", QuizText(quiz))
	}
	if err != nil {
		return fmt.Errorf("writing quiz: %w", err)
	}

	p.logger.Info("quiz published",
		zap.String("kind", string(quiz.Kind)),
		zap.String("answer", quiz.CorrectSubject.Name))
	return nil
}

func (p *Publisher) writeJSON(v envelope) error {
	enc := json.NewEncoder(p.out)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

var _ ports.Publisher = (*Publisher)(nil)
