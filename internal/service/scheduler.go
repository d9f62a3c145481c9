package service

import (
	"sync"
	"time"

	"github.com/xiaobei/mvd/internal/clock"
	"github.com/xiaobei/mvd/internal/daemon"
	"github.com/xiaobei/mvd/internal/logger"
)

// DefaultRefreshInterval is the period between background refreshes.
const DefaultRefreshInterval = 10 * time.Second

// Refresher is the part of ProposalStore the scheduler drives.
type Refresher interface {
	FetchProposals()
	FetchQuality()
}

// StatusSource reports the current daemon and connection state.
type StatusSource interface {
	DaemonStatus() daemon.Status
	ConnectionStatus() daemon.ConnectionStatus
}

// Scheduler refreshes proposals and quality while the daemon is up and
// no connection is active.
type Scheduler struct {
	store  Refresher
	status StatusSource
	clock  clock.Clock

	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	interval time.Duration
	mu       sync.Mutex
}

// NewScheduler creates a scheduler. A non-positive interval selects
// DefaultRefreshInterval.
func NewScheduler(store Refresher, status StatusSource, c clock.Clock, interval time.Duration) *Scheduler {
	if c == nil {
		c = clock.Real()
	}
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Scheduler{
		store:    store,
		status:   status,
		clock:    c,
		interval: interval,
	}
}

// Start starts the refresh loop
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.run(s.stopCh, s.doneCh)
	logger.Printf("[scheduler] Started, refresh interval: %v", s.interval)
}

// Stop stops the refresh loop and waits for it to exit. A refresh
// already in progress completes first.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.running = false
	done := s.doneCh
	s.mu.Unlock()

	<-done
	logger.Printf("[scheduler] Stopped")
}

// Restart restarts the scheduler
func (s *Scheduler) Restart() {
	s.Stop()
	s.Start()
}

// IsRunning checks if the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// GetInterval returns the refresh interval
func (s *Scheduler) GetInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetInterval changes the refresh interval and restarts a running loop.
func (s *Scheduler) SetInterval(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	s.mu.Lock()
	changed := s.interval != interval
	s.interval = interval
	running := s.running
	s.mu.Unlock()

	if changed && running {
		s.Restart()
	}
}

func (s *Scheduler) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := s.clock.NewTicker(s.GetInterval())
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick runs one refresh cycle: proposals, then quality. It does nothing
// unless the daemon is up and not connected.
func (s *Scheduler) Tick() {
	if s.status.DaemonStatus() != daemon.StatusUp {
		return
	}
	if s.status.ConnectionStatus() != daemon.NotConnected {
		return
	}
	s.store.FetchProposals()
	s.store.FetchQuality()
}

// HandleDaemonStatus fetches proposals once when the daemon comes up
// while not connected.
func (s *Scheduler) HandleDaemonStatus(prev, next daemon.Status) {
	if prev != daemon.StatusDown || next != daemon.StatusUp {
		return
	}
	if s.status.ConnectionStatus() != daemon.NotConnected {
		return
	}
	logger.Printf("[scheduler] Daemon is up, fetching proposals")
	s.store.FetchProposals()
}
