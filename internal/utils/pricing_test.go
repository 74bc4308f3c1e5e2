package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"blackrent-backend/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func testVehicle() *domain.Vehicle {
	return &domain.Vehicle{
		ID: "v1",
		Pricing: []domain.PricingTier{
			{ID: "1", MinDays: 0, MaxDays: 1, PricePerDay: 80},
			{ID: "2", MinDays: 2, MaxDays: 3, PricePerDay: 70},
			{ID: "3", MinDays: 4, MaxDays: 7, PricePerDay: 60},
			{ID: "4", MinDays: 8, MaxDays: 14, PricePerDay: 50},
		},
		Commission: domain.Commission{Type: domain.CommissionPercentage, Value: 20},
	}
}

func TestRentalDays(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected int
	}{
		{"Same day", day(2026, 3, 1), day(2026, 3, 1), 1},
		{"One night", day(2026, 3, 1), day(2026, 3, 2), 1},
		{"Week", day(2026, 3, 1), day(2026, 3, 8), 7},
		{"Across month end", day(2026, 2, 27), day(2026, 3, 2), 3},
		{"Time of day ignored", time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC), time.Date(2026, 3, 3, 1, 0, 0, 0, time.UTC), 2},
		{"End before start", day(2026, 3, 5), day(2026, 3, 1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RentalDays(tt.start, tt.end))
		})
	}
}

func TestCalculateRentalPrice(t *testing.T) {
	t.Run("Tier lookup", func(t *testing.T) {
		p := CalculateRentalPrice(testVehicle(), day(2026, 3, 1), day(2026, 3, 6), nil, nil, 0)
		assert.Equal(t, 5, p.Days)
		assert.Equal(t, 60.0, p.PricePerDay)
		assert.Equal(t, 300.0, p.TotalPrice)
		assert.Equal(t, 60.0, p.Commission)
	})

	t.Run("Percentage discount and extra km", func(t *testing.T) {
		discount := &domain.Discount{Type: domain.DiscountPercentage, Value: 10}
		p := CalculateRentalPrice(testVehicle(), day(2026, 3, 1), day(2026, 3, 3), discount, nil, 15.5)
		assert.Equal(t, 140.0, p.BasePrice)
		assert.Equal(t, 14.0, p.Discount)
		assert.Equal(t, 141.5, p.TotalPrice)
		assert.Equal(t, 28.3, p.Commission)
	})

	t.Run("Fixed discount never goes negative", func(t *testing.T) {
		discount := &domain.Discount{Type: domain.DiscountFixed, Value: 500}
		p := CalculateRentalPrice(testVehicle(), day(2026, 3, 1), day(2026, 3, 2), discount, nil, 0)
		assert.Equal(t, 0.0, p.TotalPrice)
		assert.Equal(t, 0.0, p.Commission)
	})

	t.Run("Custom fixed commission wins", func(t *testing.T) {
		custom := &domain.Commission{Type: domain.CommissionFixed, Value: 25}
		p := CalculateRentalPrice(testVehicle(), day(2026, 3, 1), day(2026, 3, 11), nil, custom, 0)
		assert.Equal(t, 500.0, p.TotalPrice)
		assert.Equal(t, 25.0, p.Commission)
	})

	t.Run("Zero custom commission falls back to vehicle", func(t *testing.T) {
		custom := &domain.Commission{Type: domain.CommissionFixed, Value: 0}
		p := CalculateRentalPrice(testVehicle(), day(2026, 3, 1), day(2026, 3, 2), nil, custom, 0)
		assert.Equal(t, 16.0, p.Commission)
	})

	t.Run("No matching tier", func(t *testing.T) {
		p := CalculateRentalPrice(testVehicle(), day(2026, 3, 1), day(2026, 4, 1), nil, nil, 0)
		assert.Equal(t, 31, p.Days)
		assert.Equal(t, 0.0, p.TotalPrice)
	})

	t.Run("Decimal rounding", func(t *testing.T) {
		v := testVehicle()
		v.Pricing = []domain.PricingTier{{MinDays: 0, MaxDays: 30, PricePerDay: 33.33}}
		v.Commission = domain.Commission{Type: domain.CommissionPercentage, Value: 15}
		p := CalculateRentalPrice(v, day(2026, 3, 1), day(2026, 3, 4), nil, nil, 0)
		assert.Equal(t, 99.99, p.TotalPrice)
		assert.Equal(t, 15.0, p.Commission)
	})
}
