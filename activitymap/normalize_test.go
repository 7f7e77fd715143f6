package activitymap_test

import (
	"context"
	"testing"
	"time"

	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-accounts/activitymap"
)

func TestMapUsesDomainVerbs(t *testing.T) {
	mapper := activitymap.New()

	cases := []struct {
		eventType accounts.ActivityEventType
		verb      string
	}{
		{accounts.ActivityEventUserRegistered, "registered"},
		{accounts.ActivityEventLoginSuccess, "logged-in"},
		{accounts.ActivityEventLoginFailure, "failed-login"},
		{accounts.ActivityEventPasswordChanged, "changed-password"},
		{accounts.ActivityEventUserRetired, "retired-account"},
	}

	for _, tc := range cases {
		entry := mapper.Map(accounts.ActivityEvent{EventType: tc.eventType, UserID: "u-1"})
		if entry.Verb != tc.verb {
			t.Errorf("%s: verb = %q, want %q", tc.eventType, entry.Verb, tc.verb)
		}
	}
}

func TestMapDefaults(t *testing.T) {
	occurred := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	entry := activitymap.New().Map(accounts.ActivityEvent{
		EventType:  accounts.ActivityEventUserConfirmed,
		UserID:     "user-123",
		Actor:      accounts.ActorRef{ID: "user-123", Type: "user"},
		OccurredAt: occurred,
	})

	if entry.Channel != "accounts" {
		t.Errorf("channel = %q, want accounts", entry.Channel)
	}
	if entry.ObjectType != "user" {
		t.Errorf("object type = %q, want user", entry.ObjectType)
	}
	if entry.ObjectID != "user-123" {
		t.Errorf("object id = %q, want user-123", entry.ObjectID)
	}
	if entry.Actor != "user-123" {
		t.Errorf("actor = %q, want user-123", entry.Actor)
	}
	if !entry.OccurredAt.Equal(occurred) {
		t.Errorf("occurred at = %v, want %v", entry.OccurredAt, occurred)
	}
	if got := entry.Metadata[activitymap.MetadataKeyActorType]; got != "user" {
		t.Errorf("actor_type metadata = %v, want user", got)
	}
}

func TestMapUnknownEventFallsBackToRawType(t *testing.T) {
	entry := activitymap.New().Map(accounts.ActivityEvent{EventType: "user.exported"})
	if entry.Verb != "user.exported" {
		t.Errorf("verb = %q, want user.exported", entry.Verb)
	}
}

func TestMapActorFallbackChain(t *testing.T) {
	mapper := activitymap.New()

	entry := mapper.Map(accounts.ActivityEvent{EventType: accounts.ActivityEventLoginFailure})
	if entry.Actor != "system" {
		t.Errorf("actor = %q, want system", entry.Actor)
	}

	entry = mapper.Map(accounts.ActivityEvent{
		EventType: accounts.ActivityEventLoginFailure,
		UserID:    "user-9",
	})
	if entry.Actor != "user-9" {
		t.Errorf("actor = %q, want subject user-9", entry.Actor)
	}

	custom := activitymap.New(activitymap.WithActorFallback("cron"))
	if got := custom.Map(accounts.ActivityEvent{EventType: "x"}).Actor; got != "cron" {
		t.Errorf("actor = %q, want cron", got)
	}
}

func TestMapOptions(t *testing.T) {
	mapper := activitymap.New(
		activitymap.WithChannel("audit"),
		activitymap.WithObjectType("account"),
		activitymap.WithVerb(accounts.ActivityEventLoginSuccess, "signed-in"),
	)

	entry := mapper.Map(accounts.ActivityEvent{
		EventType: accounts.ActivityEventLoginSuccess,
		UserID:    "u-7",
	})

	if entry.Channel != "audit" {
		t.Errorf("channel = %q, want audit", entry.Channel)
	}
	if entry.ObjectType != "account" {
		t.Errorf("object type = %q, want account", entry.ObjectType)
	}
	if entry.Verb != "signed-in" {
		t.Errorf("verb = %q, want signed-in", entry.Verb)
	}
}

func TestMapDoesNotMutateEventMetadata(t *testing.T) {
	event := accounts.ActivityEvent{
		EventType: accounts.ActivityEventLoginFailure,
		Actor:     accounts.ActorRef{Type: "user"},
		Metadata:  map[string]any{"email": "ghost@example.com"},
	}

	entry := activitymap.New().Map(event)

	if _, tainted := event.Metadata[activitymap.MetadataKeyActorType]; tainted {
		t.Error("source event metadata was mutated")
	}
	if entry.Metadata["email"] != "ghost@example.com" {
		t.Errorf("email metadata = %v, want ghost@example.com", entry.Metadata["email"])
	}
}

func TestSinkForwardsMappedEntries(t *testing.T) {
	var got []activitymap.Entry
	sink := activitymap.New().Sink(func(ctx context.Context, entry activitymap.Entry) error {
		got = append(got, entry)
		return nil
	})

	err := sink.Record(context.Background(), accounts.ActivityEvent{
		EventType: accounts.ActivityEventUserRegistered,
		UserID:    "user-1",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("entries = %d, want 1", len(got))
	}
	if got[0].Verb != "registered" || got[0].ObjectID != "user-1" {
		t.Errorf("entry = %+v, want registered user-1", got[0])
	}
}

func TestSinkNilOutIsSafe(t *testing.T) {
	sink := activitymap.New().Sink(nil)
	if err := sink.Record(context.Background(), accounts.ActivityEvent{}); err != nil {
		t.Fatalf("record: %v", err)
	}
}
