package service

import (
	"github.com/xiaobei/mvd/internal/events"
)

// User actions recorded from the proposal view.
const (
	ActionFilterText          = "filter_text"
	ActionFilterPriceTime     = "filter_price_time"
	ActionFilterPriceData     = "filter_price_data"
	ActionFilterQuality       = "filter_quality"
	ActionFilterIncludeFailed = "filter_include_failed"
	ActionFilterIPType        = "filter_ip_type"
	ActionFilterCountry       = "filter_country"
	ActionSelectProposal      = "select_proposal"
)

// Analytics records user actions. Implementations must not block.
type Analytics interface {
	UserEvent(action, payload string)
}

// Publisher is the part of events.Bus the service layer needs.
type Publisher interface {
	Publish(eventType string, data interface{})
}

var _ Publisher = (*events.Bus)(nil)

// BusAnalytics forwards every user event to a sink and republishes it on
// the event bus.
type BusAnalytics struct {
	sink Analytics
	bus  Publisher
}

// NewBusAnalytics wraps sink. Either argument may be nil.
func NewBusAnalytics(sink Analytics, bus Publisher) *BusAnalytics {
	return &BusAnalytics{sink: sink, bus: bus}
}

// UserEvent implements Analytics.
func (a *BusAnalytics) UserEvent(action, payload string) {
	if a.sink != nil {
		a.sink.UserEvent(action, payload)
	}
	if a.bus != nil {
		a.bus.Publish(events.TypeAnalytics, map[string]string{
			"action":  action,
			"payload": payload,
		})
	}
}

type nopAnalytics struct{}

func (nopAnalytics) UserEvent(string, string) {}

type nopPublisher struct{}

func (nopPublisher) Publish(string, interface{}) {}
