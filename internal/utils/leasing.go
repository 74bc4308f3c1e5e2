package utils

import (
	"time"

	"github.com/shopspring/decimal"

	"blackrent-backend/internal/domain"
)

var twelveHundred = decimal.NewFromInt(1200)

// monthlyRate converts an annual percentage to a monthly fraction
func monthlyRate(annualRate float64) decimal.Decimal {
	return decimal.NewFromFloat(annualRate).Div(twelveHundred)
}

// LeasingPayment is the regular payment without the monthly fee. For linear
// repayment it is the first, largest payment.
func LeasingPayment(paymentType domain.LeasingPaymentType, amount, annualRate float64, installments int) float64 {
	if installments < 1 {
		return 0
	}
	p := decimal.NewFromFloat(amount)
	r := monthlyRate(annualRate)
	n := decimal.NewFromInt(int64(installments))

	switch paymentType {
	case domain.PaymentLinear:
		return round2(p.Div(n).Round(2).Add(p.Mul(r).Round(2)))
	case domain.PaymentInterestOnly:
		return round2(p.Mul(r))
	default:
		return round2(annuity(p, r, installments))
	}
}

func annuity(p, r decimal.Decimal, n int) decimal.Decimal {
	if r.IsZero() {
		return p.Div(decimal.NewFromInt(int64(n))).Round(2)
	}
	growth := r.Add(decimal.NewFromInt(1)).Pow(decimal.NewFromInt(int64(n)))
	return p.Mul(r).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1))).Round(2)
}

// LeasingSchedule builds the installment plan of l. Due dates are monthly from
// the first payment date, on its day of month. Interest accrues on the
// outstanding balance and the last installment settles whatever is left.
func LeasingSchedule(l *domain.Leasing) []domain.PaymentScheduleItem {
	n := l.TotalInstallments
	if n < 1 {
		return nil
	}
	r := monthlyRate(l.InterestRate)
	fee := decimal.NewFromFloat(l.MonthlyFee).Round(2)
	balance := decimal.NewFromFloat(l.InitialLoanAmount).Round(2)

	payment := annuity(balance, r, n)
	linearPrincipal := balance.Div(decimal.NewFromInt(int64(n))).Round(2)
	interestOnly := balance.Mul(r).Round(2)

	items := make([]domain.PaymentScheduleItem, 0, n)
	for i := 1; i <= n; i++ {
		var principal, interest decimal.Decimal
		switch l.PaymentType {
		case domain.PaymentLinear:
			interest = balance.Mul(r).Round(2)
			principal = linearPrincipal
		case domain.PaymentInterestOnly:
			interest = interestOnly
			principal = decimal.Zero
		default:
			interest = balance.Mul(r).Round(2)
			principal = payment.Sub(interest)
		}
		if i == n {
			principal = balance
		}
		balance = balance.Sub(principal)
		if balance.IsNegative() {
			balance = decimal.Zero
		}

		items = append(items, domain.PaymentScheduleItem{
			LeasingID:         l.ID,
			InstallmentNumber: i,
			DueDate:           dueDate(l.FirstPaymentDate, i-1),
			Principal:         round2(principal),
			Interest:          round2(interest),
			MonthlyFee:        round2(fee),
			TotalPayment:      round2(principal.Add(interest).Add(fee)),
			RemainingBalance:  round2(balance),
		})
	}
	return items
}

func dueDate(first time.Time, months int) time.Time {
	return domain.AddMonths(first, months, first.Day())
}

// ApplyLeasingPayment fills the derived payment fields of l
func ApplyLeasingPayment(l *domain.Leasing) {
	l.MonthlyPayment = LeasingPayment(l.PaymentType, l.InitialLoanAmount, l.InterestRate, l.TotalInstallments)
	l.TotalMonthlyPayment = round2(decimal.NewFromFloat(l.MonthlyPayment).Add(decimal.NewFromFloat(l.MonthlyFee)))
}
