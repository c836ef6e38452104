package service

import "github.com/dom/pokedex/internal/domain"

// Notifier delivers change events to whatever renders them
type Notifier interface {
	Publish(event domain.Event)
}

type NopNotifier struct{}

func (NopNotifier) Publish(domain.Event) {}
