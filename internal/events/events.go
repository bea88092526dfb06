// Package events publishes catalog change notifications after commits and lets
// other instances react to them.
package events

import (
	"context"
	"time"
)

// EventType doubles as the routing key of the published message.
type EventType string

const (
	DishCreated       EventType = "dish.created"
	DishUpdated       EventType = "dish.updated"
	DishDeleted       EventType = "dish.deleted"
	DishStatusChanged EventType = "dish.status"
)

// AllDishEvents binds to every dish event.
const AllDishEvents = "dish.#"

// DishEvent describes one committed catalog mutation.
type DishEvent struct {
	Type        EventType `json:"type"`
	DishIDs     []int64   `json:"dishIds"`
	CategoryIDs []int64   `json:"categoryIds"`
	Source      string    `json:"source"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Publisher sends catalog events.
type Publisher interface {
	Publish(ctx context.Context, event DishEvent) error
}

// Subscriber delivers catalog events matching bindingKey to handler until ctx ends.
type Subscriber interface {
	Subscribe(ctx context.Context, bindingKey string, handler func(DishEvent) error) error
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, DishEvent) error { return nil }
