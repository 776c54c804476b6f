package ordernum

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	domainErrors "github.com/mellowshop/orderdesk/internal/domain/errors"
)

type sequencerStub struct {
	next  int64
	err   error
	calls int
}

func (s *sequencerStub) NextOrderSeq(ctx context.Context) (int64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	s.next++
	return s.next, nil
}

type existenceStub struct {
	collisions int
	err        error
	seen       []string
}

func (e *existenceStub) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	e.seen = append(e.seen, number)
	if e.err != nil {
		return false, e.err
	}
	return len(e.seen) <= e.collisions, nil
}

func newTestGenerator(seq *sequencerStub, store *existenceStub) (*Generator, *[]time.Duration) {
	g := New("ORD", seq, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	g.now = func() time.Time { return time.Date(2025, time.March, 14, 9, 26, 53, 0, time.UTC) }
	sleeps := &[]time.Duration{}
	g.sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	return g, sleeps
}

func TestGenerateSequencePath(t *testing.T) {
	seq := &sequencerStub{}
	store := &existenceStub{}
	g, sleeps := newTestGenerator(seq, store)

	number, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if number != "ORD-20250314-000001" {
		t.Fatalf("unexpected number %q", number)
	}
	if seq.calls != 1 {
		t.Fatalf("expected one sequence call, got %d", seq.calls)
	}
	if len(*sleeps) != 0 {
		t.Fatalf("no backoff expected on first success, got %v", *sleeps)
	}
}

func TestGenerateFallbackWhenSequenceUnavailable(t *testing.T) {
	seq := &sequencerStub{err: errors.New("sequence offline")}
	store := &existenceStub{}
	g, _ := newTestGenerator(seq, store)

	number, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Timestamp tail (5 digits) plus 4 random digits on the first attempt.
	if ok, _ := regexp.MatchString(`^ORD-20250314-\d{9}$`, number); !ok {
		t.Fatalf("fallback number %q does not match expected shape", number)
	}
}

func TestGenerateRetriesWithLinearBackoff(t *testing.T) {
	seq := &sequencerStub{}
	store := &existenceStub{collisions: 3}
	g, sleeps := newTestGenerator(seq, store)

	number, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.seen) != 4 {
		t.Fatalf("expected 4 candidates checked, got %d", len(store.seen))
	}
	if number != store.seen[3] {
		t.Fatalf("returned number %q is not the last candidate %q", number, store.seen[3])
	}
	want := []time.Duration{25 * time.Millisecond, 50 * time.Millisecond, 75 * time.Millisecond}
	if len(*sleeps) != len(want) {
		t.Fatalf("expected %d backoff sleeps, got %v", len(want), *sleeps)
	}
	for i, d := range want {
		if (*sleeps)[i] != d {
			t.Fatalf("sleep %d: want %v, got %v", i, d, (*sleeps)[i])
		}
	}
}

func TestGenerateFallbackWidensRandomSuffix(t *testing.T) {
	seq := &sequencerStub{err: errors.New("sequence offline")}
	store := &existenceStub{collisions: 2}
	g, _ := newTestGenerator(seq, store)

	if _, err := g.Generate(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Suffix lengths grow by one digit per attempt: 9, 10, 11 digits.
	for i, wantDigits := range []int{9, 10, 11} {
		pattern := regexp.MustCompile(`^ORD-20250314-\d+$`)
		if !pattern.MatchString(store.seen[i]) {
			t.Fatalf("candidate %d %q has unexpected shape", i, store.seen[i])
		}
		digits := len(store.seen[i]) - len("ORD-20250314-")
		if digits != wantDigits {
			t.Fatalf("candidate %d: want %d digits, got %d (%q)", i, wantDigits, digits, store.seen[i])
		}
	}
}

func TestGenerateGivesUpAfterRetryBudget(t *testing.T) {
	seq := &sequencerStub{}
	store := &existenceStub{collisions: 100}
	g, sleeps := newTestGenerator(seq, store)

	_, err := g.Generate(context.Background())
	if !errors.Is(err, domainErrors.ErrDuplicateOrderNumber) {
		t.Fatalf("expected ErrDuplicateOrderNumber, got %v", err)
	}
	if len(store.seen) != 5 {
		t.Fatalf("expected exactly 5 attempts, got %d", len(store.seen))
	}
	if len(*sleeps) != 4 {
		t.Fatalf("expected 4 backoff sleeps before giving up, got %d", len(*sleeps))
	}
}

func TestGeneratePropagatesStoreError(t *testing.T) {
	seq := &sequencerStub{}
	store := &existenceStub{err: errors.New("connection reset")}
	g, _ := newTestGenerator(seq, store)

	if _, err := g.Generate(context.Background()); err == nil {
		t.Fatal("expected store error to surface")
	}
}
