package repository

import (
	"context"
	"fmt"

	"coindrop/database"
	"coindrop/domain/interfaces"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

var (
	_ interfaces.InventoryRepository        = (*InventoryRepository)(nil)
	_ interfaces.CoinRepository             = (*CoinRepository)(nil)
	_ interfaces.EscrowRepository           = (*EscrowRepository)(nil)
	_ interfaces.SessionRepository          = (*SessionRepository)(nil)
	_ interfaces.CollectionRecordRepository = (*CollectionRecordRepository)(nil)
	_ interfaces.PlayerProfileRepository    = (*PlayerProfileRepository)(nil)
	_ interfaces.SponsorProfileRepository   = (*SponsorProfileRepository)(nil)
	_ interfaces.ProcessedEventRepository   = (*ProcessedEventRepository)(nil)
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	transactionalPublisher interfaces.TransactionalEventPublisher
	inventoryRepo          interfaces.InventoryRepository
	coinRepo               interfaces.CoinRepository
	escrowRepo             interfaces.EscrowRepository
	sessionRepo            interfaces.SessionRepository
	collectionRepo         interfaces.CollectionRecordRepository
	playerRepo             interfaces.PlayerProfileRepository
	sponsorRepo            interfaces.SponsorProfileRepository
	processedEventRepo     interfaces.ProcessedEventRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		db: db,
	}
}

// UnitOfWorkFactory builds transaction-scoped units of work over a pool
type UnitOfWorkFactory struct {
	db *database.DB
}

// CreateWithPublisher creates a new UnitOfWork that buffers events in the given publisher
func (f *UnitOfWorkFactory) CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) interfaces.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.inventoryRepo = NewInventoryRepositoryScoped(tx)
	u.coinRepo = NewCoinRepositoryScoped(tx)
	u.escrowRepo = NewEscrowRepositoryScoped(tx)
	u.sessionRepo = NewSessionRepositoryScoped(tx)
	u.collectionRepo = NewCollectionRecordRepositoryScoped(tx)
	u.playerRepo = NewPlayerProfileRepositoryScoped(tx)
	u.sponsorRepo = NewSponsorProfileRepositoryScoped(tx)
	u.processedEventRepo = NewProcessedEventRepositoryScoped(tx)

	return nil
}

// Commit commits the transaction and then flushes buffered events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// the ledger is already durable, so a failed flush is logged rather than returned
	if u.transactionalPublisher != nil {
		if err := u.transactionalPublisher.Flush(u.ctx); err != nil {
			log.WithError(err).Warn("Failed to flush events after commit")
		}
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

func (u *unitOfWork) InventoryRepository() interfaces.InventoryRepository {
	if u.inventoryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.inventoryRepo
}

func (u *unitOfWork) CoinRepository() interfaces.CoinRepository {
	if u.coinRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.coinRepo
}

func (u *unitOfWork) EscrowRepository() interfaces.EscrowRepository {
	if u.escrowRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.escrowRepo
}

func (u *unitOfWork) SessionRepository() interfaces.SessionRepository {
	if u.sessionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.sessionRepo
}

func (u *unitOfWork) CollectionRecordRepository() interfaces.CollectionRecordRepository {
	if u.collectionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.collectionRepo
}

func (u *unitOfWork) PlayerProfileRepository() interfaces.PlayerProfileRepository {
	if u.playerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.playerRepo
}

func (u *unitOfWork) SponsorProfileRepository() interfaces.SponsorProfileRepository {
	if u.sponsorRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.sponsorRepo
}

func (u *unitOfWork) ProcessedEventRepository() interfaces.ProcessedEventRepository {
	if u.processedEventRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.processedEventRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalPublisher
}
