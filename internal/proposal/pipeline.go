package proposal

import "strings"

// Result holds the final list and the intermediate outputs the count
// projections are computed from.
type Result struct {
	AccessPolicyFiltered []UIProposal
	TextFiltered         []UIProposal
	PriceFiltered        []UIProposal
	QualityFiltered      []UIProposal
	IPTypeFiltered       []UIProposal
	CountryFiltered      []UIProposal

	// Proposals is CountryFiltered in canonical order.
	Proposals []UIProposal
}

// Run pushes proposals through every stage in order. Each stage reads
// only the previous stage's output and never modifies its input slice.
func Run(proposals []UIProposal, c Criteria) Result {
	var r Result
	r.AccessPolicyFiltered = FilterAccessPolicy(proposals, c)
	r.TextFiltered = FilterText(r.AccessPolicyFiltered, c)
	r.PriceFiltered = FilterPrice(r.TextFiltered, c)
	r.QualityFiltered = FilterQuality(r.PriceFiltered, c)
	r.IPTypeFiltered = FilterIPType(r.QualityFiltered, c)
	r.CountryFiltered = FilterCountry(r.IPTypeFiltered, c)

	r.Proposals = make([]UIProposal, len(r.CountryFiltered))
	copy(r.Proposals, r.CountryFiltered)
	Sort(r.Proposals)
	return r
}

// FilterAccessPolicy keeps proposals without access policies when the
// no-access-policy toggle is on.
func FilterAccessPolicy(in []UIProposal, c Criteria) []UIProposal {
	if !c.Filters.Other.NoAccessPolicy {
		return in
	}
	out := filter(in, func(p UIProposal) bool { return len(p.AccessPolicies) == 0 })
	Sort(out)
	return out
}

// FilterText keeps proposals whose provider id contains the search text.
// Matching is case-sensitive.
func FilterText(in []UIProposal, c Criteria) []UIProposal {
	text := c.Transient.Text
	if text == "" {
		return in
	}
	out := filter(in, func(p UIProposal) bool { return strings.Contains(p.ProviderID, text) })
	Sort(out)
	return out
}

// FilterPrice keeps proposals priced at or below both tolerated ceilings.
func FilterPrice(in []UIProposal, c Criteria) []UIProposal {
	if c.Filters.Price.PerHour == nil && c.Filters.Price.PerGiB == nil {
		return in
	}
	perHourMax, perGiBMax := c.ToleratedPrices()
	return filter(in, func(p UIProposal) bool {
		pricePerHour := p.PaymentMethod.PricePerHour().Amount / 60
		pricePerGiB := p.PaymentMethod.PricePerGiB().Amount
		return (perHourMax == nil || pricePerHour <= *perHourMax) &&
			(perGiBMax == nil || pricePerGiB <= *perGiBMax)
	})
}

// FilterQuality drops proposals below the minimum level and, unless
// failed ones are included, proposals whose monitoring failed. An unknown
// level never fails the level check.
func FilterQuality(in []UIProposal, c Criteria) []UIProposal {
	minLevel := c.Filters.Quality.Level
	includeFailed := c.Filters.Quality.IncludeFailed
	return filter(in, func(p UIProposal) bool {
		if minLevel != QualityUnknown && p.QualityLevel != QualityUnknown && p.QualityLevel < minLevel {
			return false
		}
		if !includeFailed && p.Quality != nil && p.Quality.MonitoringFailed {
			return false
		}
		return true
	})
}

// FilterIPType keeps proposals of the selected node type.
func FilterIPType(in []UIProposal, c Criteria) []UIProposal {
	ipType := c.Filters.Other.IPType
	if ipType == "" {
		return in
	}
	return filter(in, func(p UIProposal) bool { return p.NodeType == ipType })
}

// FilterCountry keeps proposals from the selected country.
func FilterCountry(in []UIProposal, c Criteria) []UIProposal {
	country := c.Transient.Country
	if country == "" {
		return in
	}
	return filter(in, func(p UIProposal) bool { return p.Country == country })
}

// CountByNodeType counts proposals per node type.
func CountByNodeType(ps []UIProposal) map[string]int {
	return countBy(ps, func(p UIProposal) string { return p.NodeType })
}

// CountByCountry counts proposals per country code.
func CountByCountry(ps []UIProposal) map[string]int {
	return countBy(ps, func(p UIProposal) string { return p.Country })
}

func filter(in []UIProposal, keep func(UIProposal) bool) []UIProposal {
	out := make([]UIProposal, 0, len(in))
	for _, p := range in {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func countBy(ps []UIProposal, key func(UIProposal) string) map[string]int {
	counts := make(map[string]int)
	for _, p := range ps {
		counts[key(p)]++
	}
	return counts
}
