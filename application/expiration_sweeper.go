package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"coindrop/domain/interfaces"
	"coindrop/domain/services"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// ExpirationSweeper periodically reclaims coins whose TTL has elapsed.
// Each coin is settled in its own transaction so one failure never rolls
// back the rest of the batch.
type ExpirationSweeper struct {
	uowFactory interfaces.UnitOfWorkFactory
	interval   time.Duration
	batchSize  int
	observer   SweepObserver
	now        func() time.Time
}

// NewExpirationSweeper creates a new expiration sweeper. observer may be nil.
func NewExpirationSweeper(uowFactory interfaces.UnitOfWorkFactory, interval time.Duration, batchSize int, observer SweepObserver) *ExpirationSweeper {
	return &ExpirationSweeper{
		uowFactory: uowFactory,
		interval:   interval,
		batchSize:  batchSize,
		observer:   observer,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules the sweep and returns a function that stops it
func (s *ExpirationSweeper) Start(ctx context.Context) func() {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.PrintfLogger(log.StandardLogger())),
	))

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := c.AddFunc(spec, func() {
		if _, err := s.SweepOnce(ctx); err != nil {
			log.WithError(err).Error("Expiration sweep failed")
		}
	}); err != nil {
		log.WithError(err).Errorf("Failed to schedule expiration sweep %q", spec)
		return func() {}
	}

	c.Start()
	log.Infof("Expiration sweeper started, running every %s", s.interval)

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
		case <-done:
		}
		<-c.Stop().Done()
		log.Info("Expiration sweeper stopped")
	}()

	// The returned function blocks until an in-flight sweep has finished
	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-stopped
	}
}

// SweepOnce reclaims one batch of overdue coins
func (s *ExpirationSweeper) SweepOnce(ctx context.Context) (interfaces.SweepResult, error) {
	started := time.Now()
	now := s.now()

	var result interfaces.SweepResult

	due, err := s.findDue(ctx, now)
	if err != nil {
		return result, err
	}
	result.Found = len(due)

	for _, coinID := range due {
		if ctx.Err() != nil {
			break
		}

		expired, err := s.expireOne(ctx, coinID, now)
		switch {
		case err != nil:
			result.Failed++
			log.WithError(err).WithField("coinId", coinID).Warn("Failed to expire coin")
		case expired:
			result.Expired++
		default:
			result.Skipped++
		}
	}

	duration := time.Since(started)
	if result.Found > 0 {
		log.WithFields(log.Fields{
			"found":    result.Found,
			"expired":  result.Expired,
			"skipped":  result.Skipped,
			"failed":   result.Failed,
			"duration": duration,
		}).Info("Expiration sweep completed")
	}

	if s.observer != nil {
		s.observer.RecordSweep(result, duration)
	}
	return result, nil
}

func (s *ExpirationSweeper) findDue(ctx context.Context, now time.Time) ([]string, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	coins, err := services.NewExpirationService(uow.CoinRepository(), nil).FindDue(ctx, now, s.batchSize)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(coins))
	for i, coin := range coins {
		ids[i] = coin.ID
	}
	return ids, nil
}

func (s *ExpirationSweeper) expireOne(ctx context.Context, coinID string, now time.Time) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bus := uow.EventBus()
	reclaimer := services.NewCoinReclaimer(uow.CoinRepository(), uow.InventoryRepository(), uow.EscrowRepository(), bus)

	expired, err := services.NewExpirationService(uow.CoinRepository(), reclaimer).ExpireCoin(ctx, coinID, now)
	if err != nil {
		return false, err
	}
	if !expired {
		return false, nil
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit expiry of coin %s: %w", coinID, err)
	}
	return true, nil
}
