package ordernum

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	domainErrors "github.com/mellowshop/orderdesk/internal/domain/errors"
)

const (
	maxAttempts    = 5
	backoffStep    = 25 * time.Millisecond
	fallbackDigits = 4
)

// Sequencer provides the centralized order-number sequence exposed by the
// store.
type Sequencer interface {
	NextOrderSeq(ctx context.Context) (int64, error)
}

// ExistenceChecker answers whether a candidate number is already taken.
type ExistenceChecker interface {
	ExistsByNumber(ctx context.Context, number string) (bool, error)
}

// Generator produces globally unique human-readable order numbers of the
// form PREFIX-YYYYMMDD-suffix. The primary path draws from the store
// sequence; if that fails the fallback derives a suffix from the current
// timestamp plus random digits, widening the random part on every retry.
type Generator struct {
	prefix string
	seq    Sequencer
	store  ExistenceChecker
	logger *slog.Logger

	now   func() time.Time
	sleep func(time.Duration)

	mu  sync.Mutex
	rng *rand.Rand
}

// New constructs a Generator.
func New(prefix string, seq Sequencer, store ExistenceChecker, logger *slog.Logger) *Generator {
	return &Generator{
		prefix: prefix,
		seq:    seq,
		store:  store,
		logger: logger,
		now:    time.Now,
		sleep:  time.Sleep,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate returns a fresh unique order number, retrying on collision with
// linear backoff. Exhausting the retry budget surfaces
// ErrDuplicateOrderNumber instead of looping forever.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		candidate := g.candidate(ctx, attempt)

		exists, err := g.store.ExistsByNumber(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}

		g.logger.Warn("order number collision",
			slog.String("candidate", candidate),
			slog.Int("attempt", attempt),
		)
		if attempt < maxAttempts {
			g.sleep(backoffStep * time.Duration(attempt))
		}
	}
	return "", domainErrors.ErrDuplicateOrderNumber
}

func (g *Generator) candidate(ctx context.Context, attempt int) string {
	date := g.now().Format("20060102")

	if attempt == 1 && g.seq != nil {
		seq, err := g.seq.NextOrderSeq(ctx)
		if err == nil {
			return fmt.Sprintf("%s-%s-%06d", g.prefix, date, seq)
		}
		g.logger.Warn("order sequence unavailable, using fallback", slog.String("error", err.Error()))
	}

	// Fallback: timestamp tail plus a random suffix that widens with each
	// attempt to escape repeated collisions.
	tail := g.now().UnixMilli() % 100000
	width := fallbackDigits + (attempt - 1)
	limit := int64(1)
	for i := 0; i < width; i++ {
		limit *= 10
	}
	return fmt.Sprintf("%s-%s-%05d%0*d", g.prefix, date, tail, width, g.randomInt63n(limit))
}

func (g *Generator) randomInt63n(n int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Int63n(n)
}
