package utils

import (
	"time"

	"github.com/shopspring/decimal"

	"blackrent-backend/internal/domain"
)

// PriceBreakdown is the result of pricing a rental
type PriceBreakdown struct {
	Days        int
	PricePerDay float64
	BasePrice   float64
	Discount    float64
	ExtraKm     float64
	TotalPrice  float64
	Commission  float64
}

var hundred = decimal.NewFromInt(100)

// RentalDays counts whole calendar days between start and end, at least 1.
// Time of day is ignored.
func RentalDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	days := int(e.Sub(s).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// FindTier returns the first tier covering days, or nil
func FindTier(tiers []domain.PricingTier, days int) *domain.PricingTier {
	for i := range tiers {
		if tiers[i].MinDays <= days && days <= tiers[i].MaxDays {
			return &tiers[i]
		}
	}
	return nil
}

// CalculateRentalPrice prices a rental of vehicle between start and end.
// With no matching tier the base price is 0.
func CalculateRentalPrice(vehicle *domain.Vehicle, start, end time.Time, discount *domain.Discount,
	customCommission *domain.Commission, extraKm float64) PriceBreakdown {
	days := RentalDays(start, end)

	perDay := decimal.Zero
	if vehicle != nil {
		if tier := FindTier(vehicle.Pricing, days); tier != nil {
			perDay = decimal.NewFromFloat(tier.PricePerDay)
		}
	}
	base := perDay.Mul(decimal.NewFromInt(int64(days)))

	off := decimal.Zero
	if discount != nil && discount.Value > 0 {
		value := decimal.NewFromFloat(discount.Value)
		switch discount.Type {
		case domain.DiscountPercentage:
			off = base.Mul(value).Div(hundred)
		default:
			off = value
		}
	}

	extra := decimal.NewFromFloat(extraKm)
	total := base.Sub(off).Add(extra)
	if total.IsNegative() {
		total = decimal.Zero
	}

	var commission domain.Commission
	if customCommission != nil && customCommission.Value > 0 {
		commission = *customCommission
	} else if vehicle != nil {
		commission = vehicle.Commission
	}

	return PriceBreakdown{
		Days:        days,
		PricePerDay: round2(perDay),
		BasePrice:   round2(base),
		Discount:    round2(off),
		ExtraKm:     round2(extra),
		TotalPrice:  round2(total),
		Commission:  CalculateCommission(commission, total.InexactFloat64()),
	}
}

// CalculateCommission applies a percentage or fixed commission to total
func CalculateCommission(c domain.Commission, total float64) float64 {
	value := decimal.NewFromFloat(c.Value)
	if c.Type == domain.CommissionPercentage {
		return round2(decimal.NewFromFloat(total).Mul(value).Div(hundred))
	}
	return round2(value)
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
