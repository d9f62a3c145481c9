package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/xiaobei/mvd/internal/clock"
	"github.com/xiaobei/mvd/internal/events"
	"github.com/xiaobei/mvd/internal/logger"
	"github.com/xiaobei/mvd/internal/tequilapi"
)

// DefaultPollInterval is how often the daemon is probed.
const DefaultPollInterval = 2 * time.Second

// Probe is the part of the tequilapi client the monitor needs.
type Probe interface {
	Healthcheck(ctx context.Context) (*tequilapi.Healthcheck, error)
	ConnectionStatus(ctx context.Context) (*tequilapi.ConnectionStatus, error)
}

var _ Probe = (*tequilapi.Client)(nil)

// Snapshot is the monitor's view of the daemon.
type Snapshot struct {
	Daemon     Status           `json:"daemon"`
	Connection ConnectionStatus `json:"connection"`
	Version    string           `json:"version,omitempty"`
	PID        int32            `json:"pid,omitempty"`
	CheckedAt  *time.Time       `json:"checked_at,omitempty"`
}

// Monitor polls the daemon and tracks daemon and connection status.
// Listeners run on the polling goroutine, only when a status changes.
type Monitor struct {
	probe    Probe
	clock    clock.Clock
	bus      *events.Bus
	interval time.Duration

	processName string
	findProcess ProcessFinder

	mu        sync.RWMutex
	status    Status
	conn      ConnectionStatus
	version   string
	pid       int32
	checkedAt time.Time

	daemonListeners []func(prev, next Status)
	connListeners   []func(prev, next ConnectionStatus)

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewMonitor creates a monitor. The daemon starts out Down. bus may be nil.
func NewMonitor(probe Probe, c clock.Clock, bus *events.Bus, interval time.Duration) *Monitor {
	if c == nil {
		c = clock.Real()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Monitor{
		probe:       probe,
		clock:       c,
		bus:         bus,
		interval:    interval,
		processName: DefaultProcessName,
		findProcess: FindProcess,
		status:      StatusDown,
		conn:        Unknown,
	}
}

// SetProcessFinder replaces the process table lookup.
func (m *Monitor) SetProcessFinder(name string, finder ProcessFinder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processName = name
	m.findProcess = finder
}

// OnDaemonStatus registers a daemon status listener.
func (m *Monitor) OnDaemonStatus(fn func(prev, next Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.daemonListeners = append(m.daemonListeners, fn)
}

// OnConnectionStatus registers a connection status listener.
func (m *Monitor) OnConnectionStatus(fn func(prev, next ConnectionStatus)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connListeners = append(m.connListeners, fn)
}

// DaemonStatus returns the last observed daemon status
func (m *Monitor) DaemonStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// ConnectionStatus returns the last observed connection status
func (m *Monitor) ConnectionStatus() ConnectionStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conn
}

// Snapshot returns the current state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Snapshot{
		Daemon:     m.status,
		Connection: m.conn,
		Version:    m.version,
		PID:        m.pid,
	}
	if !m.checkedAt.IsZero() {
		t := m.checkedAt
		s.CheckedAt = &t
	}
	return s
}

// Start starts polling. The first poll runs immediately.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})

	go m.run(m.stopCh, m.doneCh)
	logger.Printf("[monitor] Started, poll interval: %v", m.interval)
}

// Stop stops polling and waits for the loop to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	close(m.stopCh)
	m.running = false
	done := m.doneCh
	m.mu.Unlock()

	<-done
	logger.Printf("[monitor] Stopped")
}

// IsRunning checks if the monitor is polling
func (m *Monitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *Monitor) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	m.Poll(ctx)
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			m.Poll(ctx)
		}
	}
}

// Poll probes the daemon once and notifies listeners of any change.
func (m *Monitor) Poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	status := StatusDown
	conn := Unknown
	var version string
	var pid int32

	health, err := m.probe.Healthcheck(ctx)
	if err == nil {
		status = StatusUp
		version = health.Version
		pid = int32(health.Process)
		if cs, err := m.probe.ConnectionStatus(ctx); err == nil {
			conn = ParseConnectionStatus(cs.Status)
		} else {
			logger.Printf("[monitor] Failed to get connection status: %v", err)
		}
	} else {
		pid = m.lookupProcess()
	}

	m.mu.Lock()
	prevStatus, prevConn := m.status, m.conn
	m.status, m.conn = status, conn
	m.version, m.pid = version, pid
	m.checkedAt = m.clock.Now()
	daemonListeners := append([]func(prev, next Status){}, m.daemonListeners...)
	connListeners := append([]func(prev, next ConnectionStatus){}, m.connListeners...)
	m.mu.Unlock()

	if prevStatus != status {
		if status == StatusUp {
			logger.Printf("[monitor] Daemon is up, version: %s", version)
		} else if pid > 0 {
			logger.Printf("[monitor] Daemon API unreachable, %s process running, PID: %d", m.processName, pid)
		} else {
			logger.Printf("[monitor] Daemon is down: %v", err)
		}
		m.publish(events.TypeDaemonStatus, map[string]interface{}{"status": status, "pid": pid})
		for _, fn := range daemonListeners {
			fn(prevStatus, status)
		}
	}
	if prevConn != conn {
		m.publish(events.TypeConnectionStatus, map[string]interface{}{"status": conn})
		for _, fn := range connListeners {
			fn(prevConn, conn)
		}
	}
}

// lookupProcess finds the daemon process when its API is unreachable. A
// PID seen on a previous poll is rechecked before scanning again.
func (m *Monitor) lookupProcess() int32 {
	m.mu.RLock()
	name, find, last := m.processName, m.findProcess, m.pid
	m.mu.RUnlock()

	if find == nil {
		return 0
	}
	if last > 0 && isProcessAlive(last) {
		return last
	}
	return find(name)
}

func (m *Monitor) publish(eventType string, data map[string]interface{}) {
	if m.bus == nil {
		return
	}
	m.bus.PublishTimestamped(eventType, data)
}
