package handlers

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/mocks"
	"github.com/ersonp/feather/internal/domain/services"
)

var day = time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC) // a Monday

var errBoom = errors.New("boom")

const wrenPhoto = "https://upload.wikimedia.org/wikipedia/commons/a/ab/Troglodytes_troglodytes.jpg"

var wrenFacts = []string{
	"The Eurasian wren sings with surprising volume for its tiny size.",
	"Males build several domed nests for the female to choose from.",
	"In cold winters dozens of wrens may roost together in one cavity.",
}

// stubProducer returns a fixed unit or error.
type stubProducer struct {
	unit  *entities.ContentUnit
	err   error
	calls int
}

func (p *stubProducer) Run(ctx context.Context) (*entities.ContentUnit, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.unit, nil
}

func wrenUnit() *entities.ContentUnit {
	img := wrenPhoto
	return &entities.ContentUnit{
		Subject:       entities.NewSubject("Eurasian Wren"),
		Description:   "A tiny brown bird with a remarkably loud song.",
		ImageURL:      &img,
		Facts:         append([]string(nil), wrenFacts...),
		CandidateTier: entities.TierCurated,
		MediaSource:   entities.MediaReferenceDirect,
		FactSource:    entities.FactSourceGenerated,
		CreatedAt:     day,
	}
}

// quizRecords returns five posted subjects, oldest first, each with two
// quiz-worthy facts.
func quizRecords() []entities.HistoryRecord {
	return []entities.HistoryRecord{
		mocks.Record("Goldcrest", day.AddDate(0, 0, -5),
			"The smallest bird in Europe, weighing about five grams.",
			"Often hangs upside down while searching conifer needles for insects."),
		mocks.Record("Hawfinch", day.AddDate(0, 0, -4),
			"Its massive bill can crack cherry stones with enormous force.",
			"Prefers mature deciduous woodland where it feeds on tree seeds."),
		mocks.Record("Eurasian Woodcock", day.AddDate(0, 0, -3),
			"Males perform display flights called roding at dusk and dawn in spring.",
			"Uses its long sensitive bill to probe soft soil for earthworms."),
		mocks.Record("Song Thrush", day.AddDate(0, 0, -2),
			"Smashes snail shells against a favourite stone known as an anvil.",
			"Each phrase of the Song Thrush song is repeated two or three times."),
		mocks.Record("Eurasian Wren", day.AddDate(0, 0, -1), wrenFacts...),
	}
}

func newTestQuizComposer() *services.QuizComposer {
	return services.NewQuizComposer(nil, services.DefaultCuratedData(), services.DefaultFactGate(), rand.New(rand.NewPCG(1, 2)), nil)
}
