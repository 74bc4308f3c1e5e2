package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/repository"
	"blackrent-backend/internal/service"
)

type mockVehicleRepo struct {
	mock.Mock
	repository.VehicleRepository
}

func (m *mockVehicleRepo) ListSTKExpiring(ctx context.Context, before time.Time) ([]domain.Vehicle, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}

type mockExpenseService struct {
	mock.Mock
	service.ExpenseService
}

func (m *mockExpenseService) GenerateRecurring(ctx context.Context, asOf time.Time) (int, error) {
	args := m.Called(ctx, asOf)
	return args.Int(0), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, to []string, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

type countingCaches struct{ calls int }

func (c *countingCaches) InvalidateCaches() { c.calls++ }

var fixedNow = time.Date(2026, 10, 15, 6, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		Email:     config.EmailConfig{AdminEmails: []string{"admin@blackrent.sk"}},
		Scheduler: config.SchedulerConfig{STKReminderDays: 30, SpamRetentionDays: 30},
	}
}

func newRunner(t *testing.T, services *Services) (*JobRunner, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	jr := NewJobRunner(db, services, testConfig())
	jr.now = func() time.Time { return fixedNow }
	return jr, mock
}

func TestAdvanceRentalStatuses(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		caches := &countingCaches{}
		jr, mock := newRunner(t, &Services{Caches: caches})

		mock.ExpectQuery("UPDATE rentals\\s+SET status = 'active'").
			WithArgs(fixedNow).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("r1").AddRow("r2"))
		mock.ExpectQuery("UPDATE rentals\\s+SET status = 'finished'").
			WithArgs(fixedNow).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("r3"))

		jr.AdvanceRentalStatuses()
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, 1, caches.calls)
	})

	t.Run("Nothing to do keeps caches", func(t *testing.T) {
		caches := &countingCaches{}
		jr, mock := newRunner(t, &Services{Caches: caches})

		mock.ExpectQuery("SET status = 'active'").WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectQuery("SET status = 'finished'").WillReturnRows(sqlmock.NewRows([]string{"id"}))

		jr.AdvanceRentalStatuses()
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Zero(t, caches.calls)
	})

	t.Run("Failure stops the job", func(t *testing.T) {
		jr, mock := newRunner(t, &Services{})
		mock.ExpectQuery("SET status = 'active'").WillReturnError(errors.New("connection reset"))

		jr.AdvanceRentalStatuses()
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPurgeSpamRentals(t *testing.T) {
	caches := &countingCaches{}
	jr, mock := newRunner(t, &Services{Caches: caches})

	mock.ExpectQuery("DELETE FROM rentals\\s+WHERE approval_status = 'spam'").
		WithArgs(fixedNow.AddDate(0, 0, -30)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("r9"))

	jr.PurgeSpamRentals()
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1, caches.calls)
}

func TestSendSTKReminders(t *testing.T) {
	expired := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	soon := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		vehicles := new(mockVehicleRepo)
		notifier := new(mockNotifier)
		jr, _ := newRunner(t, &Services{Vehicles: vehicles, Notifier: notifier})

		vehicles.On("ListSTKExpiring", mock.Anything, fixedNow.AddDate(0, 0, 30)).Return([]domain.Vehicle{
			{Brand: "Škoda", Model: "Octavia", LicensePlate: "BA111AA", STK: &expired},
			{Brand: "BMW", Model: "X5", LicensePlate: "BA222BB", STK: &soon},
		}, nil)
		notifier.On("Send", mock.Anything, []string{"admin@blackrent.sk"}, "STK upozornenie: 2 vozidiel",
			mock.MatchedBy(func(body string) bool {
				return strings.Contains(body, "BA111AA") && strings.Contains(body, "PREPADNUTÁ") && strings.Contains(body, "02.11.2026")
			})).Return(nil)

		jr.SendSTKReminders()
		notifier.AssertExpectations(t)
	})

	t.Run("Nothing expiring", func(t *testing.T) {
		vehicles := new(mockVehicleRepo)
		notifier := new(mockNotifier)
		jr, _ := newRunner(t, &Services{Vehicles: vehicles, Notifier: notifier})
		vehicles.On("ListSTKExpiring", mock.Anything, mock.Anything).Return([]domain.Vehicle{}, nil)

		jr.SendSTKReminders()
		notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGenerateRecurringExpenses(t *testing.T) {
	expenses := new(mockExpenseService)
	jr, _ := newRunner(t, &Services{Expenses: expenses})
	expenses.On("GenerateRecurring", mock.Anything, fixedNow).Return(3, nil)

	jr.GenerateRecurringExpenses()
	expenses.AssertExpectations(t)
}

func TestRunWithRecovery(t *testing.T) {
	jr, _ := newRunner(t, &Services{})
	require.NotPanics(t, func() {
		jr.runWithRecovery("boom", func() { panic("boom") })
	})
}
