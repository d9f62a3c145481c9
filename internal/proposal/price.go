package proposal

import "math"

const bytesInGiB = 1 << 30

// PricePerMinute returns the cost of one minute of service.
func (pm PaymentMethod) PricePerMinute() Money {
	if pm.Rate.PerSeconds == 0 {
		return Money{Currency: pm.Price.Currency}
	}
	return Money{
		Amount:   math.Round(60 / float64(pm.Rate.PerSeconds) * pm.Price.Amount),
		Currency: pm.Price.Currency,
	}
}

// PricePerHour returns the cost of one hour of service.
func (pm PaymentMethod) PricePerHour() Money {
	m := pm.PricePerMinute()
	m.Amount *= 60
	return m
}

// PricePerGiB returns the cost of one GiB of traffic.
func (pm PaymentMethod) PricePerGiB() Money {
	if pm.Rate.PerBytes == 0 {
		return Money{Currency: pm.Price.Currency}
	}
	return Money{
		Amount:   math.Round(bytesInGiB / float64(pm.Rate.PerBytes) * pm.Price.Amount),
		Currency: pm.Price.Currency,
	}
}
