package jobs

import (
	"context"
	"fmt"
	"strings"

	"blackrent-backend/internal/logger"
)

// SendSTKReminders e-mails the admins a list of vehicles whose technical
// inspection (STK) expires within the configured number of days
func (jr *JobRunner) SendSTKReminders() {
	jr.runWithRecovery("SendSTKReminders", func() {
		ctx := context.Background()
		admins := jr.config.Email.AdminEmails
		if len(admins) == 0 {
			logger.Warn("No admin e-mails configured, skipping STK reminders")
			return
		}

		now := jr.now()
		deadline := now.AddDate(0, 0, jr.config.Scheduler.STKReminderDays)
		vehicles, err := jr.services.Vehicles.ListSTKExpiring(ctx, deadline)
		if err != nil {
			logger.Error("Failed to load vehicles with expiring STK", "error", err)
			return
		}
		if len(vehicles) == 0 {
			logger.Info("No STK expiring soon")
			return
		}

		var b strings.Builder
		b.WriteString("Vozidlá s blížiacou sa alebo prepadnutou STK:\n\n")
		for _, v := range vehicles {
			if v.STK == nil {
				continue
			}
			state := "platná do"
			if v.STK.Before(now) {
				state = "PREPADNUTÁ od"
			}
			fmt.Fprintf(&b, "- %s %s (%s), %s %s\n", v.Brand, v.Model, v.LicensePlate, state, v.STK.Format("02.01.2006"))
		}

		subject := fmt.Sprintf("STK upozornenie: %d vozidiel", len(vehicles))
		if err := jr.services.Notifier.Send(ctx, admins, subject, b.String()); err != nil {
			logger.Error("Failed to send STK reminder", "error", err)
			return
		}
		logger.Info("STK reminder sent", "vehicles", len(vehicles), "recipients", len(admins))
	})
}
