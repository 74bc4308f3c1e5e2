package jobs

import (
	"context"

	"blackrent-backend/internal/logger"
)

// GenerateRecurringExpenses materialises every recurring expense due today
// or earlier
func (jr *JobRunner) GenerateRecurringExpenses() {
	jr.runWithRecovery("GenerateRecurringExpenses", func() {
		n, err := jr.services.Expenses.GenerateRecurring(context.Background(), jr.now())
		if err != nil {
			logger.Error("Failed to generate recurring expenses", "error", err)
			return
		}
		logger.Info("Generated recurring expenses", "count", n)
	})
}
