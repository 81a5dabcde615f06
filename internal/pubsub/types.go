package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/mauv0809/catchboard/internal/entry"
)

type client struct {
	client *pubsub.Client
}

// EventType represents the type of event/message sent via pubsub. It is also
// the topic the event is published on.
type EventType string

const (
	EventEntrySubmitted EventType = "entry-submitted"
	EventEntriesSynced  EventType = "entries-synced"
)

// EntrySubmittedEvent is published after an entry write was stored.
type EntrySubmittedEvent struct {
	Kind         string       `msgpack:"kind"`
	CompetitorID string       `msgpack:"competitor_id"`
	Hour         int          `msgpack:"hour,omitempty"`
	Status       entry.Status `msgpack:"status"`
	Source       entry.Role   `msgpack:"source"`
	Version      int64        `msgpack:"version"`
	RequestID    string       `msgpack:"request_id"`
	SubmittedAt  time.Time    `msgpack:"submitted_at"`
}

// EntriesSyncedEvent is published after offline entries were promoted.
type EntriesSyncedEvent struct {
	Role          entry.Role `msgpack:"role,omitempty"`
	CompetitorIDs []string   `msgpack:"competitor_ids,omitempty"`
	Synced        int        `msgpack:"synced"`
	SyncedAt      time.Time  `msgpack:"synced_at"`
}
