package application

import (
	"context"
	"fmt"
	"time"

	"coindrop/domain/entities"
	"coindrop/domain/interfaces"
	"coindrop/domain/utils"

	log "github.com/sirupsen/logrus"
)

type inventoryHandler struct {
	uowFactory interfaces.UnitOfWorkFactory
	rng        utils.RandomSource
	rules      entities.GameRules
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(uowFactory interfaces.UnitOfWorkFactory, rng utils.RandomSource, rules entities.GameRules) InventoryHandler {
	return &inventoryHandler{
		uowFactory: uowFactory,
		rng:        rng,
		rules:      rules,
	}
}

// HandlePurchaseCompleted credits a purchase exactly once per event id
func (h *inventoryHandler) HandlePurchaseCompleted(ctx context.Context, purchase entities.PurchaseCompleted) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	credited, err := newServiceSet(uow, h.rng, h.rules).inventory.CreditPurchase(ctx, purchase, time.Now().UTC())
	if err != nil {
		return false, err
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit purchase %s: %w", purchase.EventID, err)
	}

	if credited {
		log.WithFields(log.Fields{
			"eventId":      purchase.EventID,
			"sponsorId":    purchase.SponsorID,
			"denomination": purchase.Denomination,
			"quantity":     purchase.Quantity,
		}).Info("Purchase credited to inventory")
	}
	return credited, nil
}

func (h *inventoryHandler) GetInventory(ctx context.Context, sponsorID string) ([]*entities.InventoryEntry, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return newServiceSet(uow, h.rng, h.rules).inventory.GetInventory(ctx, sponsorID)
}
