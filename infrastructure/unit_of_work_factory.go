package infrastructure

import (
	"coindrop/database"
	"coindrop/domain/interfaces"
	"coindrop/events"
	"coindrop/repository"
)

// UnitOfWorkFactory creates units of work that pair a database transaction
// with a transactional event publisher
type UnitOfWorkFactory struct {
	repoFactory    *repository.UnitOfWorkFactory
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// RegisterLocalHandler registers an in-process handler on the underlying NATS publisher
func (f *UnitOfWorkFactory) RegisterLocalHandler(eventType events.EventType, handler LocalEventHandler) {
	if natsPublisher, ok := f.eventPublisher.(*NATSEventPublisher); ok {
		natsPublisher.RegisterLocalHandler(eventType, handler)
	}
}

// Create returns a fresh unit of work with its own pending event queue
func (f *UnitOfWorkFactory) Create() interfaces.UnitOfWork {
	return f.repoFactory.CreateWithPublisher(NewNATSTransactionalPublisher(f.eventPublisher))
}
