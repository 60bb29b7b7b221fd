package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"unit_booking/internal/adapters/observability"
)

// ExpirySweeper periodically reclaims stale unpaid bookings. It keeps no
// state of its own beyond the ticker; everything it reads and writes goes
// through the BookingService and the ledger underneath it.
type ExpirySweeper struct {
	bookings *BookingService
	interval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewExpirySweeper(bookings *BookingService, interval time.Duration) *ExpirySweeper {
	return &ExpirySweeper{
		bookings: bookings,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (s *ExpirySweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker != nil {
		return
	}
	s.ticker = time.NewTicker(s.interval)
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.run()
	log.Info().Dur("interval", s.interval).Msg("expiry sweeper started")
}

func (s *ExpirySweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.wg.Wait()
	s.ticker = nil
	log.Info().Msg("expiry sweeper stopped")
}

func (s *ExpirySweeper) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ticker.C:
			s.RunOnce(context.Background())
		case <-s.stop:
			return
		}
	}
}

// RunOnce executes a single sweep pass and is also the entry point for the
// manual sweep endpoint.
func (s *ExpirySweeper) RunOnce(ctx context.Context) {
	expired, err := s.bookings.ExpireStale(ctx)
	if err != nil {
		log.Error().Err(err).Msg("expiry sweep failed")
		return
	}
	observability.ObserveSweep(expired)
	if expired > 0 {
		log.Info().Int("expired", expired).Msg("expiry sweep completed")
	}
}
