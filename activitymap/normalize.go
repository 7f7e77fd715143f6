// Package activitymap flattens accounts activity events into the generic
// actor/verb/object records an activity feed or audit trail consumes.
package activitymap

import (
	"context"
	"strings"
	"time"

	accounts "github.com/goliatone/go-accounts"
)

// MetadataKeyActorType carries the actor type derived from accounts.ActorRef.Type.
const MetadataKeyActorType = "actor_type"

const (
	defaultChannel    = "accounts"
	defaultObjectType = "user"
	defaultActor      = "system"
)

// defaultVerbs maps lifecycle event types to past-tense feed verbs. Unmapped
// event types fall back to their raw type string.
var defaultVerbs = map[accounts.ActivityEventType]string{
	accounts.ActivityEventUserRegistered:       "registered",
	accounts.ActivityEventUserConfirmed:        "confirmed-account",
	accounts.ActivityEventLoginSuccess:         "logged-in",
	accounts.ActivityEventLoginFailure:         "failed-login",
	accounts.ActivityEventPasswordChanged:      "changed-password",
	accounts.ActivityEventPasswordResetSuccess: "reset-password",
	accounts.ActivityEventUserRetired:          "retired-account",
}

// Entry is the transport-agnostic record handed to downstream feeds.
type Entry struct {
	Actor      string         `json:"actor"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Mapper translates accounts activity events into feed entries.
type Mapper struct {
	channel       string
	objectType    string
	actorFallback string
	verbs         map[accounts.ActivityEventType]string
}

// Option customizes a Mapper.
type Option func(*Mapper)

// New creates a Mapper with the accounts channel and user object defaults.
func New(opts ...Option) *Mapper {
	m := &Mapper{
		channel:       defaultChannel,
		objectType:    defaultObjectType,
		actorFallback: defaultActor,
		verbs:         defaultVerbs,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// WithChannel overrides the channel stamped on every entry.
func WithChannel(channel string) Option {
	return func(m *Mapper) {
		m.channel = strings.TrimSpace(channel)
	}
}

// WithObjectType overrides the object type stamped on every entry.
func WithObjectType(objectType string) Option {
	return func(m *Mapper) {
		m.objectType = strings.TrimSpace(objectType)
	}
}

// WithActorFallback sets the actor used when an event names neither an actor
// nor a subject user.
func WithActorFallback(actor string) Option {
	return func(m *Mapper) {
		m.actorFallback = strings.TrimSpace(actor)
	}
}

// WithVerb overrides the feed verb for one event type.
func WithVerb(eventType accounts.ActivityEventType, verb string) Option {
	return func(m *Mapper) {
		verbs := make(map[accounts.ActivityEventType]string, len(m.verbs)+1)
		for k, v := range m.verbs {
			verbs[k] = v
		}
		verbs[eventType] = strings.TrimSpace(verb)
		m.verbs = verbs
	}
}

// Map translates a single event. The actor resolves to the explicit actor ref,
// then the subject user, then the configured fallback.
func (m *Mapper) Map(event accounts.ActivityEvent) Entry {
	actor := strings.TrimSpace(event.Actor.ID)
	if actor == "" {
		actor = strings.TrimSpace(event.UserID)
	}
	if actor == "" {
		actor = m.actorFallback
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	return Entry{
		Actor:      actor,
		Verb:       m.verb(event.EventType),
		ObjectType: m.objectType,
		ObjectID:   strings.TrimSpace(event.UserID),
		Channel:    m.channel,
		Metadata:   m.metadata(event),
		OccurredAt: occurredAt,
	}
}

// Sink adapts the mapper into an accounts.ActivitySink forwarding every
// mapped entry to out. Handlers already swallow sink errors, so out's error
// only reaches their logs.
func (m *Mapper) Sink(out func(ctx context.Context, entry Entry) error) accounts.ActivitySinkFunc {
	return func(ctx context.Context, event accounts.ActivityEvent) error {
		if out == nil {
			return nil
		}
		return out(ctx, m.Map(event))
	}
}

func (m *Mapper) verb(eventType accounts.ActivityEventType) string {
	if verb, ok := m.verbs[eventType]; ok && verb != "" {
		return verb
	}
	return string(eventType)
}

func (m *Mapper) metadata(event accounts.ActivityEvent) map[string]any {
	actorType := strings.TrimSpace(event.Actor.Type)
	if len(event.Metadata) == 0 && actorType == "" {
		return nil
	}

	metadata := make(map[string]any, len(event.Metadata)+1)
	for key, value := range event.Metadata {
		metadata[key] = value
	}
	if actorType != "" {
		if _, exists := metadata[MetadataKeyActorType]; !exists {
			metadata[MetadataKeyActorType] = actorType
		}
	}
	return metadata
}
