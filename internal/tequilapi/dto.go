package tequilapi

import "github.com/xiaobei/mvd/internal/proposal"

type proposalList struct {
	Proposals []proposalDTO `json:"proposals"`
}

type proposalDTO struct {
	ProviderID        string               `json:"providerId"`
	ServiceType       string               `json:"serviceType"`
	Compatibility     int                  `json:"compatibility"`
	ServiceDefinition serviceDefinitionDTO `json:"serviceDefinition"`
	PaymentMethod     paymentMethodDTO     `json:"paymentMethod"`
	AccessPolicies    []accessPolicyDTO    `json:"accessPolicies,omitempty"`
}

type serviceDefinitionDTO struct {
	LocationOriginate locationDTO `json:"locationOriginate"`
}

type locationDTO struct {
	Country  string `json:"country"`
	NodeType string `json:"nodeType"`
}

type paymentMethodDTO struct {
	Type  string   `json:"type"`
	Price moneyDTO `json:"price"`
	Rate  rateDTO  `json:"rate"`
}

type moneyDTO struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type rateDTO struct {
	PerSeconds int64 `json:"perSeconds"`
	PerBytes   int64 `json:"perBytes"`
}

type accessPolicyDTO struct {
	ID     string `json:"id"`
	Source string `json:"source"`
}

func (d proposalDTO) toProposal() proposal.Proposal {
	p := proposal.Proposal{
		ProviderID:    d.ProviderID,
		ServiceType:   d.ServiceType,
		Compatibility: d.Compatibility,
		Country:       d.ServiceDefinition.LocationOriginate.Country,
		NodeType:      d.ServiceDefinition.LocationOriginate.NodeType,
		PaymentMethod: proposal.PaymentMethod{
			Type: d.PaymentMethod.Type,
			Price: proposal.Money{
				Amount:   d.PaymentMethod.Price.Amount,
				Currency: d.PaymentMethod.Price.Currency,
			},
			Rate: proposal.PaymentRate{
				PerSeconds: d.PaymentMethod.Rate.PerSeconds,
				PerBytes:   d.PaymentMethod.Rate.PerBytes,
			},
		},
	}
	// an empty list means "no policies", same as an absent one
	if len(d.AccessPolicies) > 0 {
		p.AccessPolicies = make([]proposal.AccessPolicy, len(d.AccessPolicies))
		for i, ap := range d.AccessPolicies {
			p.AccessPolicies[i] = proposal.AccessPolicy{ID: ap.ID, Source: ap.Source}
		}
	}
	return p
}

type qualityList struct {
	Quality []qualityDTO `json:"quality"`
}

type qualityDTO struct {
	ProviderID       string  `json:"providerId"`
	ServiceType      string  `json:"serviceType"`
	Compatibility    int     `json:"compatibility"`
	Quality          float64 `json:"quality"`
	Latency          float64 `json:"latency"`
	Bandwidth        float64 `json:"bandwidth"`
	MonitoringFailed bool    `json:"monitoringFailed"`
}

func (d qualityDTO) toQuality() proposal.Quality {
	return proposal.Quality{
		ProviderID:       d.ProviderID,
		ServiceType:      d.ServiceType,
		Compatibility:    d.Compatibility,
		Quality:          d.Quality,
		Latency:          d.Latency,
		Bandwidth:        d.Bandwidth,
		MonitoringFailed: d.MonitoringFailed,
	}
}

// Healthcheck is the daemon's liveness report.
type Healthcheck struct {
	Uptime  string `json:"uptime"`
	Process int    `json:"process"`
	Version string `json:"version"`
}

// ConnectionStatus is the daemon's current connection.
type ConnectionStatus struct {
	Status    string `json:"status"`
	SessionID string `json:"sessionId,omitempty"`
}

type errorMessage struct {
	Message string `json:"message"`
}
