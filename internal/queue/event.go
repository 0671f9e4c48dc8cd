// Package queue carries catalog change events over RabbitMQ so that every
// instance can drop its cached search pages when a movie changes.
package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// RoutingKeyMovieChanged is the routing key of MovieChangedEvent.
const RoutingKeyMovieChanged = "catalog.movie.changed"

// Movie change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// MovieChangedEvent is published after an admin creates, edits or deletes a
// movie. Source identifies the publishing instance so it can skip its own
// events.
type MovieChangedEvent struct {
	MovieID    string `json:"movie_id"`
	Title      string `json:"title,omitempty"`
	Action     string `json:"action"`
	Source     string `json:"source"`
	OccurredAt string `json:"occurred_at"`
}

// NewMovieChanged stamps an event with the current UTC time.
func NewMovieChanged(movieID, title, action, source string) MovieChangedEvent {
	return MovieChangedEvent{
		MovieID:    movieID,
		Title:      title,
		Action:     action,
		Source:     source,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func decodeMovieChanged(body []byte) (MovieChangedEvent, error) {
	var ev MovieChangedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal: %w", err)
	}
	switch ev.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return ev, fmt.Errorf("unknown action %q", ev.Action)
	}
	if ev.MovieID == "" {
		return ev, fmt.Errorf("event has no movie_id")
	}
	return ev, nil
}
