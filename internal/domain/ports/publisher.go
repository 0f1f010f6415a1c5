package ports

import (
	"context"

	"github.com/ersonp/feather/internal/domain/entities"
)

// Publisher delivers content to the channel.
type Publisher interface {
	PublishContent(ctx context.Context, unit *entities.ContentUnit) error
	PublishQuiz(ctx context.Context, quiz *entities.QuizRound) error
}
