package usersink_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-storefront/pkg/activity"
	"github.com/goliatone/go-storefront/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()

	event := activity.Event{
		Verb:       activity.VerbCartItemAdded,
		ActorID:    actorID.String(),
		ObjectType: "product",
		ObjectID:   "p1",
		Channel:    "storefront",
		Metadata: map[string]any{
			"quantity": 2,
		},
		OccurredAt: now,
	}

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID {
		t.Fatalf("expected actor %s got %s", actorID, record.ActorID)
	}
	if record.UserID != actorID {
		t.Fatalf("expected the actor to double as the user, got %s", record.UserID)
	}
	if record.Verb != activity.VerbCartItemAdded || record.ObjectType != "product" || record.ObjectID != "p1" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "storefront" {
		t.Fatalf("expected channel storefront got %q", record.Channel)
	}
	if record.OccurredAt != now {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["quantity"] != 2 {
		t.Fatalf("expected metadata passthrough got %v", record.Data["quantity"])
	}
}

func TestHookNotifyPreservesNonUUIDActor(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbStepCompleted,
		ActorID:    "demo-user-123",
		ObjectType: "onboarding",
		ObjectID:   "2",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != uuid.Nil {
		t.Fatalf("expected a nil actor uuid, got %s", record.ActorID)
	}
	if record.Data["caller_id"] != "demo-user-123" {
		t.Fatalf("expected the raw caller id kept in data, got %v", record.Data)
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyDefaultsTimestamp(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbCartCleared,
		ObjectType: "cart",
		ObjectID:   "1",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	if sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
}
