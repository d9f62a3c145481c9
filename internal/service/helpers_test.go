package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xiaobei/mvd/internal/daemon"
	"github.com/xiaobei/mvd/internal/proposal"
)

// fakeSource serves canned responses. When gate is non-nil every
// FindProposals call signals entered and then waits on gate.
type fakeSource struct {
	mu        sync.Mutex
	proposals []proposal.Proposal
	quality   []proposal.Quality
	err       error

	gate    chan struct{}
	entered chan struct{}

	proposalCalls atomic.Int32
	qualityCalls  atomic.Int32
}

func (f *fakeSource) FindProposals(ctx context.Context, serviceType string) ([]proposal.Proposal, error) {
	f.proposalCalls.Add(1)
	if f.gate != nil {
		f.entered <- struct{}{}
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.proposals, nil
}

func (f *fakeSource) ProposalsQuality(ctx context.Context) ([]proposal.Quality, error) {
	f.qualityCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.quality, nil
}

func (f *fakeSource) set(proposals []proposal.Proposal, quality []proposal.Quality, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.proposals = proposals
	f.quality = quality
	f.err = err
}

type memFilters struct {
	mu      sync.Mutex
	filters proposal.Filters
	writes  int
	err     error
}

func (m *memFilters) GetFilters() proposal.Filters {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filters
}

func (m *memFilters) SetPartial(patch proposal.FilterPatch) (proposal.Filters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.filters, m.err
	}
	m.filters = m.filters.Apply(patch)
	m.writes++
	return m.filters, nil
}

type recordedEvent struct {
	action  string
	payload string
}

type recordingAnalytics struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingAnalytics) UserEvent(action, payload string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{action, payload})
}

func (r *recordingAnalytics) byAction(action string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.events {
		if e.action == action {
			out = append(out, e)
		}
	}
	return out
}

type recordingBus struct {
	mu    sync.Mutex
	types []string
}

func (b *recordingBus) Publish(eventType string, data interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.types = append(b.types, eventType)
}

func (b *recordingBus) count(eventType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, t := range b.types {
		if t == eventType {
			n++
		}
	}
	return n
}

type staticStatus struct {
	mu     sync.Mutex
	daemon daemon.Status
	conn   daemon.ConnectionStatus
}

func (s *staticStatus) DaemonStatus() daemon.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.daemon
}

func (s *staticStatus) ConnectionStatus() daemon.ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

var errUnavailable = errors.New("daemon unavailable")

func prop(provider, country, nodeType string) proposal.Proposal {
	return proposal.Proposal{
		ProviderID:  provider,
		ServiceType: "wireguard",
		Country:     country,
		NodeType:    nodeType,
	}
}

func keys(ps []proposal.UIProposal) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ProviderID
	}
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
