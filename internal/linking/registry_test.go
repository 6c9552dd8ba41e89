package linking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/adsgate/adsgate/internal/identity"
)

func testIdentity(limit int) identity.Identity {
	return identity.Identity{
		ID:          uuid.NewString(),
		DisplayName: "acct",
		LinkLimit:   limit,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestEnsureLinkedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(NewMemoryStore())
	ident := testIdentity(10)

	res, err := reg.EnsureLinked(ctx, ident, "A1")
	if err != nil {
		t.Fatalf("first link: %v", err)
	}
	if res.Outcome != NewlyLinked {
		t.Fatalf("expected NewlyLinked, got %s", res.Outcome)
	}

	res, err = reg.EnsureLinked(ctx, ident, "A1")
	if err != nil {
		t.Fatalf("second link: %v", err)
	}
	if res.Outcome != AlreadyLinked {
		t.Fatalf("expected AlreadyLinked, got %s", res.Outcome)
	}

	count, err := reg.Count(ctx, ident.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one consumed slot, got %d", count)
	}
}

func TestEnsureLinkedEnforcesLimit(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(NewMemoryStore())
	ident := testIdentity(3)

	for i := 0; i < 3; i++ {
		res, err := reg.EnsureLinked(ctx, ident, fmt.Sprintf("acct-%d", i))
		if err != nil {
			t.Fatalf("link %d: %v", i, err)
		}
		if res.Outcome != NewlyLinked {
			t.Fatalf("link %d: expected NewlyLinked, got %s", i, res.Outcome)
		}
	}

	for i := 0; i < 5; i++ {
		res, err := reg.EnsureLinked(ctx, ident, "one-too-many")
		if err != nil {
			t.Fatalf("over-limit link: %v", err)
		}
		if res.Outcome != LimitReached {
			t.Fatalf("expected LimitReached, got %s", res.Outcome)
		}
		if res.Limit != 3 {
			t.Fatalf("expected limit 3 in result, got %d", res.Limit)
		}
	}

	// Rejected attempts must not mutate state.
	count, err := reg.Count(ctx, ident.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}

	// Re-presenting an existing pair still succeeds at the limit.
	res, err := reg.EnsureLinked(ctx, ident, "acct-0")
	if err != nil {
		t.Fatalf("relink at limit: %v", err)
	}
	if res.Outcome != AlreadyLinked {
		t.Fatalf("expected AlreadyLinked at limit, got %s", res.Outcome)
	}
}

func TestEnsureLinkedConcurrentLastSlot(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(NewMemoryStore())
	ident := testIdentity(2)

	if res, err := reg.EnsureLinked(ctx, ident, "existing"); err != nil || res.Outcome != NewlyLinked {
		t.Fatalf("seed link: res=%+v err=%v", res, err)
	}

	// Two different new accounts race for the single remaining slot.
	var wg sync.WaitGroup
	outcomes := make([]LinkOutcome, 2)
	for i, acct := range []string{"racer-x", "racer-y"} {
		wg.Add(1)
		go func(i int, acct string) {
			defer wg.Done()
			res, err := reg.EnsureLinked(ctx, ident, acct)
			if err != nil {
				t.Errorf("concurrent link %s: %v", acct, err)
				return
			}
			outcomes[i] = res.Outcome
		}(i, acct)
	}
	wg.Wait()

	var linked, limited int
	for _, o := range outcomes {
		switch o {
		case NewlyLinked:
			linked++
		case LimitReached:
			limited++
		}
	}
	if linked != 1 || limited != 1 {
		t.Fatalf("expected exactly one NewlyLinked and one LimitReached, got %v", outcomes)
	}

	count, err := reg.Count(ctx, ident.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
}

func TestRegistriesIsolatePerIdentity(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(NewMemoryStore())
	first := testIdentity(1)
	second := testIdentity(1)

	if res, err := reg.EnsureLinked(ctx, first, "X"); err != nil || res.Outcome != NewlyLinked {
		t.Fatalf("first identity link: res=%+v err=%v", res, err)
	}
	// A full quota on one identity does not affect another.
	if res, err := reg.EnsureLinked(ctx, second, "X"); err != nil || res.Outcome != NewlyLinked {
		t.Fatalf("second identity link: res=%+v err=%v", res, err)
	}
}
