package booking

import (
	"time"

	"tutor-booking/internal/domain/payment"
)

type PriceCalculator interface {
	Price(total time.Duration) payment.Money
}

type HourlyPriceCalculator struct {
	HourlyRateCents int64
	Currency        string
}

func NewHourlyPriceCalculator(hourlyRateCents int64, currency string) *HourlyPriceCalculator {
	return &HourlyPriceCalculator{
		HourlyRateCents: hourlyRateCents,
		Currency:        currency,
	}
}

// Price is prorated by the minute so half-hour blocks cost half the hourly rate.
func (pc *HourlyPriceCalculator) Price(total time.Duration) payment.Money {
	minutes := int64(total / time.Minute)
	return payment.MustMoney(minutes*pc.HourlyRateCents/60, pc.Currency)
}
