package application

import (
	"coindrop/domain/entities"
	"coindrop/domain/interfaces"
	"coindrop/domain/services"
	"coindrop/domain/utils"
)

// serviceSet holds domain services bound to one unit of work
type serviceSet struct {
	inventory  interfaces.InventoryService
	sessions   interfaces.SessionService
	collection interfaces.CollectionService
}

// newServiceSet wires the domain services over the repositories of a started unit of work
func newServiceSet(uow interfaces.UnitOfWork, rng utils.RandomSource, rules entities.GameRules) *serviceSet {
	bus := uow.EventBus()

	inventory := services.NewInventoryService(
		uow.InventoryRepository(),
		uow.SponsorProfileRepository(),
		uow.ProcessedEventRepository(),
		bus,
		rng,
		rules,
	)
	reclaimer := services.NewCoinReclaimer(
		uow.CoinRepository(),
		uow.InventoryRepository(),
		uow.EscrowRepository(),
		bus,
	)

	return &serviceSet{
		inventory: inventory,
		sessions: services.NewSessionService(
			uow.SessionRepository(),
			uow.CoinRepository(),
			uow.EscrowRepository(),
			uow.InventoryRepository(),
			uow.PlayerProfileRepository(),
			uow.SponsorProfileRepository(),
			inventory,
			reclaimer,
			bus,
			rng,
			rules,
		),
		collection: services.NewCollectionService(
			uow.SessionRepository(),
			uow.CoinRepository(),
			uow.EscrowRepository(),
			uow.PlayerProfileRepository(),
			uow.SponsorProfileRepository(),
			uow.CollectionRecordRepository(),
			reclaimer,
			bus,
			rules,
		),
	}
}
