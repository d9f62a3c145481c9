package proposal

// DefaultDecimalPart is the number of minor units in one MYST.
const DefaultDecimalPart = 100_000_000

// priceToleranceFactor absorbs rounding between the displayed price and
// the amount in minor units.
const priceToleranceFactor = 0.000005

// PriceFilter holds optional price ceilings in minor units. A nil
// ceiling disables that dimension.
type PriceFilter struct {
	PerHour *float64 `json:"per_hour,omitempty"`
	PerGiB  *float64 `json:"per_gib,omitempty"`
}

// QualityFilter holds the minimum quality level and failed-monitoring toggle
type QualityFilter struct {
	Level         QualityLevel `json:"level"`
	IncludeFailed bool         `json:"include_failed"`
}

// OtherFilter holds the remaining persisted toggles
type OtherFilter struct {
	NoAccessPolicy bool   `json:"no_access_policy"`
	IPType         string `json:"ip_type,omitempty"`
}

// Filters is the persisted part of the proposal filter state.
type Filters struct {
	Price   PriceFilter   `json:"price"`
	Quality QualityFilter `json:"quality"`
	Other   OtherFilter   `json:"other"`
}

// FilterPatch is a partial update of Filters. Nil fields are left as they
// are; ResetPrice clears both price ceilings before the price fields apply.
type FilterPatch struct {
	ResetPrice     bool          `json:"reset_price,omitempty"`
	PricePerHour   *float64      `json:"price_per_hour,omitempty"`
	PricePerGiB    *float64      `json:"price_per_gib,omitempty"`
	QualityLevel   *QualityLevel `json:"quality_level,omitempty"`
	IncludeFailed  *bool         `json:"include_failed,omitempty"`
	NoAccessPolicy *bool         `json:"no_access_policy,omitempty"`
	IPType         *string       `json:"ip_type,omitempty"`
}

// Apply returns f with patch merged in. f is not modified.
func (f Filters) Apply(patch FilterPatch) Filters {
	out := f
	if patch.ResetPrice {
		out.Price = PriceFilter{}
	}
	if patch.PricePerHour != nil {
		v := *patch.PricePerHour
		out.Price.PerHour = &v
	}
	if patch.PricePerGiB != nil {
		v := *patch.PricePerGiB
		out.Price.PerGiB = &v
	}
	if patch.QualityLevel != nil {
		out.Quality.Level = *patch.QualityLevel
	}
	if patch.IncludeFailed != nil {
		out.Quality.IncludeFailed = *patch.IncludeFailed
	}
	if patch.NoAccessPolicy != nil {
		out.Other.NoAccessPolicy = *patch.NoAccessPolicy
	}
	if patch.IPType != nil {
		out.Other.IPType = *patch.IPType
	}
	return out
}

// TransientFilter is UI state that is never persisted.
type TransientFilter struct {
	Text    string `json:"text,omitempty"`
	Country string `json:"country,omitempty"`
}

// Criteria is everything the pipeline reads besides the proposals.
type Criteria struct {
	Filters     Filters
	Transient   TransientFilter
	DecimalPart float64
}

// ToleratedPrices returns the effective ceilings. A zero ceiling stays
// exact so that "free only" does not admit near-free proposals.
func (c Criteria) ToleratedPrices() (perHour, perGiB *float64) {
	decimalPart := c.DecimalPart
	if decimalPart == 0 {
		decimalPart = DefaultDecimalPart
	}
	tolerance := priceToleranceFactor * decimalPart
	tolerate := func(ceiling *float64) *float64 {
		if ceiling == nil {
			return nil
		}
		v := *ceiling
		if v != 0 {
			v += tolerance
		}
		return &v
	}
	return tolerate(c.Filters.Price.PerHour), tolerate(c.Filters.Price.PerGiB)
}
