// Package events announces catalog, favorite and profile changes so that
// renderers outside this process can refresh. Publishing is best effort:
// callers log failures and carry on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Event types.
const (
	JobCreated      = "EVENT_JOB_CREATED"
	JobUpdated      = "EVENT_JOB_UPDATED"
	JobDeleted      = "EVENT_JOB_DELETED"
	FavoriteToggled = "EVENT_FAVORITE_TOGGLED"
	ProfileUpdated  = "EVENT_PROFILE_UPDATED"
)

// Channel is the Redis Pub/Sub channel events are published on.
const Channel = "EVENT_LISTINGS_CHANGED"

// Event is the JSON payload of a change notification.
type Event struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	JobID    int       `json:"jobId,omitempty"`
	Favorite *bool     `json:"favorite,omitempty"`
	At       time.Time `json:"at"`
}

// New stamps an event of type typ with a fresh id and the current time.
func New(typ string, jobID int) Event {
	return Event{
		ID:    uuid.NewString(),
		Type:  typ,
		JobID: jobID,
		At:    time.Now().UTC(),
	}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Redis publishes events on Channel.
type Redis struct {
	rdb *redis.Client
}

// NewRedis returns a publisher on rdb.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (r *Redis) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := r.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// Log writes events to a logger. It is the publisher used when no Redis
// is configured.
type Log struct {
	log logrus.FieldLogger
}

// NewLog returns a publisher that logs at debug level.
func NewLog(log logrus.FieldLogger) *Log {
	return &Log{log: log.WithField("component", "events")}
}

func (l *Log) Publish(_ context.Context, e Event) error {
	l.log.WithFields(logrus.Fields{
		"eventId": e.ID,
		"type":    e.Type,
		"jobId":   e.JobID,
	}).Debug("listings changed")
	return nil
}
