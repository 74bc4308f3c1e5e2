package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/service"
)

type mockLeasingService struct {
	mock.Mock
	service.LeasingService
}

func (m *mockLeasingService) MarkPaid(ctx context.Context, actor service.Actor, id string, installments []int, paidDate time.Time) (*domain.Leasing, error) {
	args := m.Called(ctx, actor, id, installments, paidDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Leasing), args.Error(1)
}

func (m *mockLeasingService) UnmarkPaid(ctx context.Context, actor service.Actor, id string, installment int) (*domain.Leasing, error) {
	args := m.Called(ctx, actor, id, installment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Leasing), args.Error(1)
}

func TestLeasingPayments(t *testing.T) {
	t.Run("Single installment without body pays today", func(t *testing.T) {
		leasings := new(mockLeasingService)
		leasings.On("MarkPaid", mock.Anything, mock.Anything, "l1", []int{3}, time.Time{}).
			Return(&domain.Leasing{ID: "l1", PaidInstallments: 3}, nil)
		handler, token := newTestServer(t, Services{Leasings: leasings}, nil)

		rec, resp := do(t, handler, http.MethodPost, "/api/leasings/l1/schedule/3/pay", token, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(3), resp.Data.(map[string]any)["paidInstallments"])
		leasings.AssertExpectations(t)
	})

	t.Run("Bulk pay with date", func(t *testing.T) {
		leasings := new(mockLeasingService)
		paid := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
		leasings.On("MarkPaid", mock.Anything, mock.Anything, "l1", []int{1, 2}, paid).
			Return(&domain.Leasing{ID: "l1", PaidInstallments: 2}, nil)
		handler, token := newTestServer(t, Services{Leasings: leasings}, nil)

		rec, _ := do(t, handler, http.MethodPost, "/api/leasings/l1/schedule/bulk-pay", token,
			`{"installmentNumbers":[1,2],"paidDate":"2026-10-01"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		leasings.AssertExpectations(t)
	})

	t.Run("Bad payment date", func(t *testing.T) {
		handler, token := newTestServer(t, Services{Leasings: new(mockLeasingService)}, nil)

		rec, resp := do(t, handler, http.MethodPost, "/api/leasings/l1/schedule/bulk-pay", token,
			`{"installmentNumbers":[1],"paidDate":"1.10.2026"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Neplatný dátum platby", resp.Error)
	})

	t.Run("Unmark unknown installment", func(t *testing.T) {
		leasings := new(mockLeasingService)
		leasings.On("UnmarkPaid", mock.Anything, mock.Anything, "l1", 40).Return(nil, service.ErrNotFound)
		handler, token := newTestServer(t, Services{Leasings: leasings}, nil)

		rec, _ := do(t, handler, http.MethodDelete, "/api/leasings/l1/schedule/40/pay", token, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
