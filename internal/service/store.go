package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xiaobei/mvd/internal/clock"
	"github.com/xiaobei/mvd/internal/events"
	"github.com/xiaobei/mvd/internal/logger"
	"github.com/xiaobei/mvd/internal/proposal"
)

// DefaultServiceType is the only service type the client lists.
const DefaultServiceType = "wireguard"

// ErrProposalNotFound is returned when a key does not name a known proposal.
var ErrProposalNotFound = errors.New("proposal not found")

// DataSource provides proposals and their quality records.
type DataSource interface {
	FindProposals(ctx context.Context, serviceType string) ([]proposal.Proposal, error)
	ProposalsQuality(ctx context.Context) ([]proposal.Quality, error)
}

// FilterStore persists the user's filter configuration.
type FilterStore interface {
	GetFilters() proposal.Filters
	SetPartial(patch proposal.FilterPatch) (proposal.Filters, error)
}

// StoreOptions tunes a ProposalStore. Zero values select defaults.
type StoreOptions struct {
	ServiceType    string
	DecimalPart    float64
	DebounceWindow time.Duration
	Clock          clock.Clock
}

// ProposalStore holds the proposal list, the quality map and the filter
// state, and serves the filtered view.
type ProposalStore struct {
	source    DataSource
	filters   FilterStore
	analytics Analytics
	bus       Publisher

	serviceType string
	decimalPart float64

	// fetch context; triggers never cancel an in-flight fetch
	ctx context.Context

	fetchingProposals atomic.Bool
	fetchingQuality   atomic.Bool

	perHourMax *Debouncer[float64]
	perGiBMax  *Debouncer[float64]

	mu        sync.RWMutex
	proposals []proposal.Proposal
	quality   map[proposal.Key]proposal.Quality
	transient proposal.TransientFilter
	active    *proposal.Proposal
	cache     *proposal.Result
}

// NewProposalStore creates a store. analytics and bus may be nil.
func NewProposalStore(source DataSource, filters FilterStore, analytics Analytics, bus Publisher, opts StoreOptions) *ProposalStore {
	if analytics == nil {
		analytics = nopAnalytics{}
	}
	if bus == nil {
		bus = nopPublisher{}
	}
	if opts.ServiceType == "" {
		opts.ServiceType = DefaultServiceType
	}
	if opts.DecimalPart <= 0 {
		opts.DecimalPart = proposal.DefaultDecimalPart
	}
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = DefaultDebounceWindow
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}

	s := &ProposalStore{
		source:      source,
		filters:     filters,
		analytics:   analytics,
		bus:         bus,
		serviceType: opts.ServiceType,
		decimalPart: opts.DecimalPart,
		ctx:         context.Background(),
		quality:     make(map[proposal.Key]proposal.Quality),
	}
	s.perHourMax = NewDebouncer(opts.Clock, opts.DebounceWindow, func(v float64) {
		if err := s.SetPricePerHourMax(v); err != nil {
			logger.Printf("[proposals] Failed to save price per hour filter: %v", err)
		}
	})
	s.perGiBMax = NewDebouncer(opts.Clock, opts.DebounceWindow, func(v float64) {
		if err := s.SetPricePerGiBMax(v); err != nil {
			logger.Printf("[proposals] Failed to save price per GiB filter: %v", err)
		}
	})
	return s
}

// Close writes out any debounced price change still waiting.
func (s *ProposalStore) Close() {
	s.perHourMax.Flush()
	s.perGiBMax.Flush()
}

// ==================== Fetching ====================

// FetchProposals replaces the proposal list with a fresh one from the
// data source. A call made while another is in flight returns at once.
func (s *ProposalStore) FetchProposals() {
	if !s.fetchingProposals.CompareAndSwap(false, true) {
		return
	}
	s.bus.Publish(events.TypeLoadingChanged, map[string]bool{"loading": true})
	defer func() {
		s.fetchingProposals.Store(false)
		s.bus.Publish(events.TypeLoadingChanged, map[string]bool{"loading": false})
	}()

	proposals, err := s.source.FindProposals(s.ctx, s.serviceType)
	if err != nil {
		logger.Printf("[proposals] Could not get proposals: %v", err)
		return
	}

	s.mu.Lock()
	s.proposals = proposals
	s.cache = nil
	s.mu.Unlock()

	s.bus.Publish(events.TypeProposalsUpdated, map[string]int{"count": len(proposals)})
}

// FetchQuality merges a fresh quality batch into the quality map. An
// empty batch leaves the map untouched.
func (s *ProposalStore) FetchQuality() {
	if !s.fetchingQuality.CompareAndSwap(false, true) {
		return
	}
	defer s.fetchingQuality.Store(false)

	batch, err := s.source.ProposalsQuality(s.ctx)
	if err != nil {
		logger.Printf("[proposals] Could not get proposal quality: %v", err)
		return
	}
	if len(batch) == 0 {
		return
	}

	s.mu.Lock()
	proposal.MergeQuality(s.quality, batch)
	s.cache = nil
	count := len(s.quality)
	s.mu.Unlock()

	s.bus.Publish(events.TypeQualityUpdated, map[string]int{"count": count})
}

// Loading reports whether a proposal fetch is in flight.
func (s *ProposalStore) Loading() bool {
	return s.fetchingProposals.Load()
}

// ==================== Reads ====================

// Proposals returns every known proposal joined with its quality, in
// canonical order.
func (s *ProposalStore) Proposals() []proposal.UIProposal {
	s.mu.RLock()
	all := proposal.Enrich(s.proposals, s.quality)
	s.mu.RUnlock()
	proposal.Sort(all)
	return all
}

// Filtered returns the output of the filter pipeline.
func (s *ProposalStore) Filtered() []proposal.UIProposal {
	return slices.Clone(s.result().Proposals)
}

// IPTypeCounts counts quality-filtered proposals per node type.
func (s *ProposalStore) IPTypeCounts() map[string]int {
	return proposal.CountByNodeType(s.result().QualityFiltered)
}

// CountryCounts counts IP-type-filtered proposals per country.
func (s *ProposalStore) CountryCounts() map[string]int {
	return proposal.CountByCountry(s.result().IPTypeFiltered)
}

// Filter returns the transient filter.
func (s *ProposalStore) Filter() proposal.TransientFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transient
}

// Filters returns the persisted filters.
func (s *ProposalStore) Filters() proposal.Filters {
	return s.filters.GetFilters()
}

// Active returns the selected proposal, or nil.
func (s *ProposalStore) Active() *proposal.UIProposal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return nil
	}
	ui := proposal.Enrich([]proposal.Proposal{*s.active}, s.quality)[0]
	return &ui
}

// result returns the cached pipeline output, recomputing it when a
// mutation has invalidated it.
func (s *ProposalStore) result() proposal.Result {
	s.mu.RLock()
	if s.cache != nil {
		r := *s.cache
		s.mu.RUnlock()
		return r
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		criteria := proposal.Criteria{
			Filters:     s.filters.GetFilters(),
			Transient:   s.transient,
			DecimalPart: s.decimalPart,
		}
		r := proposal.Run(proposal.Enrich(s.proposals, s.quality), criteria)
		s.cache = &r
	}
	return *s.cache
}

func (s *ProposalStore) invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

// ==================== Filter setters ====================

// SetTextFilter sets the provider-id substring and clears the country.
func (s *ProposalStore) SetTextFilter(text string) {
	s.mu.Lock()
	s.transient.Text = text
	s.transient.Country = ""
	s.cache = nil
	s.mu.Unlock()

	s.publishFilters()
	s.analytics.UserEvent(ActionFilterText, text)
}

// SetPricePerHourMax stores the hourly price ceiling.
func (s *ProposalStore) SetPricePerHourMax(v float64) error {
	if err := s.setPartial(proposal.FilterPatch{PricePerHour: &v}); err != nil {
		return err
	}
	s.analytics.UserEvent(ActionFilterPriceTime, formatFloat(v))
	return nil
}

// SetPricePerHourMaxDebounced stores the hourly ceiling once input settles.
func (s *ProposalStore) SetPricePerHourMaxDebounced(v float64) {
	s.perHourMax.Call(v)
}

// SetPricePerGiBMax stores the per-GiB price ceiling.
func (s *ProposalStore) SetPricePerGiBMax(v float64) error {
	if err := s.setPartial(proposal.FilterPatch{PricePerGiB: &v}); err != nil {
		return err
	}
	s.analytics.UserEvent(ActionFilterPriceData, formatFloat(v))
	return nil
}

// SetPricePerGiBMaxDebounced stores the per-GiB ceiling once input settles.
func (s *ProposalStore) SetPricePerGiBMaxDebounced(v float64) {
	s.perGiBMax.Call(v)
}

// ResetPriceFilter removes both price ceilings.
func (s *ProposalStore) ResetPriceFilter() error {
	s.perHourMax.Cancel()
	s.perGiBMax.Cancel()
	return s.setPartial(proposal.FilterPatch{ResetPrice: true})
}

// SetQualityFilter stores the minimum quality level. QualityUnknown
// disables the level check.
func (s *ProposalStore) SetQualityFilter(level proposal.QualityLevel) error {
	if err := s.setPartial(proposal.FilterPatch{QualityLevel: &level}); err != nil {
		return err
	}
	payload := ""
	if level != proposal.QualityUnknown {
		payload = level.String()
	}
	s.analytics.UserEvent(ActionFilterQuality, payload)
	return nil
}

// SetIncludeFailed stores whether proposals that failed monitoring are
// listed.
func (s *ProposalStore) SetIncludeFailed(include bool) error {
	if err := s.setPartial(proposal.FilterPatch{IncludeFailed: &include}); err != nil {
		return err
	}
	s.analytics.UserEvent(ActionFilterIncludeFailed, strconv.FormatBool(include))
	return nil
}

// SetIPTypeFilter stores the node type filter and clears the country.
func (s *ProposalStore) SetIPTypeFilter(ipType string) error {
	if err := s.setPartial(proposal.FilterPatch{IPType: &ipType}); err != nil {
		return err
	}
	s.SetCountryFilter("")
	return nil
}

// ToggleIPTypeFilter selects ipType, or clears the filter when ipType is
// already selected.
func (s *ProposalStore) ToggleIPTypeFilter(ipType string) error {
	next := ipType
	if s.filters.GetFilters().Other.IPType == ipType {
		next = ""
	}
	if err := s.SetIPTypeFilter(next); err != nil {
		return err
	}
	s.analytics.UserEvent(ActionFilterIPType, ipType)
	return nil
}

// SetCountryFilter sets the transient country filter.
func (s *ProposalStore) SetCountryFilter(country string) {
	s.mu.Lock()
	changed := s.transient.Country != country
	s.transient.Country = country
	s.cache = nil
	s.mu.Unlock()

	if changed {
		s.publishFilters()
	}
}

// ToggleCountryFilter selects country, or clears it when already
// selected. The active proposal is cleared either way.
func (s *ProposalStore) ToggleCountryFilter(country string) {
	s.mu.Lock()
	if s.transient.Country == country {
		s.transient.Country = ""
	} else {
		s.transient.Country = country
	}
	s.cache = nil
	hadActive := s.active != nil
	s.active = nil
	s.mu.Unlock()

	s.publishFilters()
	if hadActive {
		s.bus.Publish(events.TypeActiveChanged, map[string]interface{}{"key": nil})
	}
	s.analytics.UserEvent(ActionFilterCountry, country)
}

// SetAccessPolicyFilter stores whether only proposals without access
// policies are listed.
func (s *ProposalStore) SetAccessPolicyFilter(noAccessPolicy bool) error {
	return s.setPartial(proposal.FilterPatch{NoAccessPolicy: &noAccessPolicy})
}

// ToggleActiveProposal selects the proposal with key, or clears the
// selection when it is already selected.
func (s *ProposalStore) ToggleActiveProposal(key proposal.Key) (*proposal.UIProposal, error) {
	s.mu.Lock()
	idx := slices.IndexFunc(s.proposals, func(p proposal.Proposal) bool {
		return proposal.KeyOf(p) == key
	})
	if idx < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrProposalNotFound, key)
	}
	selected := s.proposals[idx]
	if s.active != nil && proposal.KeyOf(*s.active) == key {
		s.active = nil
	} else {
		s.active = &selected
	}
	active := s.active
	s.mu.Unlock()

	var payload interface{}
	if active != nil {
		payload = key.String()
	}
	s.bus.Publish(events.TypeActiveChanged, map[string]interface{}{"key": payload})
	s.analytics.UserEvent(ActionSelectProposal, selected.Country)
	return s.Active(), nil
}

func (s *ProposalStore) setPartial(patch proposal.FilterPatch) error {
	if _, err := s.filters.SetPartial(patch); err != nil {
		return fmt.Errorf("failed to save filters: %w", err)
	}
	s.invalidate()
	s.publishFilters()
	return nil
}

func (s *ProposalStore) publishFilters() {
	s.bus.Publish(events.TypeFiltersChanged, map[string]interface{}{
		"filters":   s.filters.GetFilters(),
		"transient": s.Filter(),
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
