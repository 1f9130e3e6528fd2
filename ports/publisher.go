package ports

import "dataview/domain/explorer"

// EventPublisher delivers push events to the clients of a session.
type EventPublisher interface {
	Publish(event explorer.Event)
}

// EventPublisherFunc adapts a function to EventPublisher.
type EventPublisherFunc func(event explorer.Event)

func (f EventPublisherFunc) Publish(event explorer.Event) { f(event) }
