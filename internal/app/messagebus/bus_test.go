package messagebus_test

import (
	"errors"
	"github.com/burenotti/go_health_tracker/internal/app/messagebus"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type testEvent struct {
	kind string
}

func (e testEvent) Type() string           { return e.kind }
func (e testEvent) PublishedAt() time.Time { return time.Time{} }

func TestPublishDispatchesByType(t *testing.T) {
	t.Parallel()
	bus := messagebus.New(slog.New(slog.NewTextHandler(io.Discard, nil)))

	var created, deleted atomic.Int32
	bus.Register("created", func(domain.Event) error {
		created.Add(1)
		return nil
	})
	bus.Register("created", func(domain.Event) error {
		created.Add(1)
		return errors.New("handler failure is only logged")
	})
	bus.Register("deleted", func(domain.Event) error {
		deleted.Add(1)
		return nil
	})

	if err := bus.PublishEvents(testEvent{"created"}, testEvent{"created"}, testEvent{"ignored"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	bus.Close()

	if got := created.Load(); got != 4 {
		t.Fatalf("expected 4 created deliveries, got %d", got)
	}
	if got := deleted.Load(); got != 0 {
		t.Fatalf("expected no deleted deliveries, got %d", got)
	}
}
