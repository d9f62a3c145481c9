package proposal

// Money represents an amount in the smallest currency unit
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// PaymentRate represents how often a provider charges
type PaymentRate struct {
	PerSeconds int64 `json:"per_seconds"` // charge every N seconds, 0 means time is free
	PerBytes   int64 `json:"per_bytes"`   // charge every N bytes, 0 means traffic is free
}

// PaymentMethod represents a proposal's pricing
type PaymentMethod struct {
	Type  string      `json:"type"`
	Price Money       `json:"price"`
	Rate  PaymentRate `json:"rate"`
}

// AccessPolicy represents an access restriction attached to a proposal
type AccessPolicy struct {
	ID     string `json:"id"`
	Source string `json:"source"`
}

// Proposal represents a VPN service offering as returned by the daemon.
// Proposals are never mutated; a refresh replaces the whole list.
type Proposal struct {
	ProviderID     string         `json:"provider_id"`
	ServiceType    string         `json:"service_type"`
	Compatibility  int            `json:"compatibility"`
	Country        string         `json:"country"`   // ISO country code
	NodeType       string         `json:"node_type"` // residential/hosting/business/cellular
	PaymentMethod  PaymentMethod  `json:"payment_method"`
	AccessPolicies []AccessPolicy `json:"access_policies,omitempty"`
}

// Quality represents monitoring data for one proposal
type Quality struct {
	ProviderID       string  `json:"provider_id"`
	ServiceType      string  `json:"service_type"`
	Compatibility    int     `json:"compatibility"`
	Quality          float64 `json:"quality"`
	Latency          float64 `json:"latency"`
	Bandwidth        float64 `json:"bandwidth"`
	MonitoringFailed bool    `json:"monitoring_failed"`
}

// Key returns the key of the proposal this record describes.
func (q Quality) Key() Key {
	return Key{ProviderID: q.ProviderID, ServiceType: q.ServiceType, Compatibility: q.Compatibility}
}

// UIProposal is a Proposal joined with its quality record. It is derived
// on every read and never stored.
type UIProposal struct {
	Proposal
	Key          Key          `json:"key"`
	Quality      *Quality     `json:"quality,omitempty"`
	QualityLevel QualityLevel `json:"quality_level"`
}

// Enrich joins proposals with the quality map.
func Enrich(proposals []Proposal, quality map[Key]Quality) []UIProposal {
	out := make([]UIProposal, 0, len(proposals))
	for _, p := range proposals {
		ui := UIProposal{Proposal: p, Key: KeyOf(p)}
		if q, ok := quality[ui.Key]; ok {
			q := q
			ui.Quality = &q
		}
		ui.QualityLevel = LevelOf(ui.Quality)
		out = append(out, ui)
	}
	return out
}

// MergeQuality merges a batch into dst. Existing keys not present in the
// batch are kept.
func MergeQuality(dst map[Key]Quality, batch []Quality) {
	for _, q := range batch {
		dst[q.Key()] = q
	}
}
