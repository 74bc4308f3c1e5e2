package domain

import "time"

type LoanCategory string

const (
	LoanCarLoan          LoanCategory = "autoúver"
	LoanOperatingLeasing LoanCategory = "operatívny_leasing"
	LoanPersonal         LoanCategory = "pôžička"
)

type LeasingPaymentType string

const (
	PaymentAnnuity      LeasingPaymentType = "anuita"
	PaymentLinear       LeasingPaymentType = "lineárne"
	PaymentInterestOnly LeasingPaymentType = "len_úrok"
)

type PenaltyType string

const (
	PenaltyPercentPrincipal PenaltyType = "percent_principal"
	PenaltyFixedAmount      PenaltyType = "fixed_amount"
)

// Leasing is a vehicle financing contract with a monthly payment schedule.
// The progress fields are derived from the schedule and never set by clients.
type Leasing struct {
	ID                    string             `json:"id"`
	VehicleID             string             `json:"vehicleId"`
	LeasingCompany        string             `json:"leasingCompany"`
	LoanCategory          LoanCategory       `json:"loanCategory"`
	PaymentType           LeasingPaymentType `json:"paymentType"`
	InitialLoanAmount     float64            `json:"initialLoanAmount"`
	TotalInstallments     int                `json:"totalInstallments"`
	FirstPaymentDate      time.Time          `json:"firstPaymentDate"`
	InterestRate          float64            `json:"interestRate"`
	RPMN                  *float64           `json:"rpmn,omitempty"`
	MonthlyFee            float64            `json:"monthlyFee"`
	ProcessingFee         float64            `json:"processingFee"`
	MonthlyPayment        float64            `json:"monthlyPayment"`
	TotalMonthlyPayment   float64            `json:"totalMonthlyPayment"`
	EarlyRepaymentPenalty float64            `json:"earlyRepaymentPenalty"`
	PenaltyType           PenaltyType        `json:"earlyRepaymentPenaltyType"`
	PriceWithoutVAT       *float64           `json:"acquisitionPriceWithoutVAT,omitempty"`
	PriceWithVAT          *float64           `json:"acquisitionPriceWithVAT,omitempty"`
	IsNonDeductible       bool               `json:"isNonDeductible"`

	CurrentBalance        float64    `json:"currentBalance"`
	PaidInstallments      int        `json:"paidInstallments"`
	RemainingInstallments int        `json:"remainingInstallments"`
	LastPaidDate          *time.Time `json:"lastPaidDate,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// EarlyRepaymentCost is the penalty for paying the current balance off today
func (l *Leasing) EarlyRepaymentCost() float64 {
	if l.PenaltyType == PenaltyFixedAmount {
		return l.EarlyRepaymentPenalty
	}
	return l.CurrentBalance * l.EarlyRepaymentPenalty / 100
}

type PaymentScheduleItem struct {
	ID                string     `json:"id"`
	LeasingID         string     `json:"leasingId"`
	InstallmentNumber int        `json:"installmentNumber"`
	DueDate           time.Time  `json:"dueDate"`
	Principal         float64    `json:"principal"`
	Interest          float64    `json:"interest"`
	MonthlyFee        float64    `json:"monthlyFee"`
	TotalPayment      float64    `json:"totalPayment"`
	RemainingBalance  float64    `json:"remainingBalance"`
	IsPaid            bool       `json:"isPaid"`
	PaidDate          *time.Time `json:"paidDate,omitempty"`
}

type LeasingDocumentType string

const (
	LeasingDocContract        LeasingDocumentType = "contract"
	LeasingDocPaymentSchedule LeasingDocumentType = "payment_schedule"
	LeasingDocPhoto           LeasingDocumentType = "photo"
	LeasingDocOther           LeasingDocumentType = "other"
)

type LeasingDocument struct {
	ID         string              `json:"id"`
	LeasingID  string              `json:"leasingId"`
	Type       LeasingDocumentType `json:"type"`
	FileName   string              `json:"fileName"`
	FileURL    string              `json:"fileUrl"`
	FileSize   int64               `json:"fileSize"`
	MimeType   string              `json:"mimeType"`
	UploadedAt time.Time           `json:"uploadedAt"`
}
