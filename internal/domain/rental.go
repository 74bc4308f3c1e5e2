package domain

import "time"

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusConfirmed RentalStatus = "confirmed"
	RentalStatusActive    RentalStatus = "active"
	RentalStatusFinished  RentalStatus = "finished"
	RentalStatusCancelled RentalStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentBankTransfer  PaymentMethod = "bank_transfer"
	PaymentVRP           PaymentMethod = "vrp"
	PaymentDirectToOwner PaymentMethod = "direct_to_owner"
)

// IsReceived reports whether the money passes through the rental company
func (p PaymentMethod) IsReceived() bool {
	return p == PaymentCash || p == PaymentBankTransfer || p == PaymentVRP
}

func (p PaymentMethod) Valid() bool {
	return p.IsReceived() || p == PaymentDirectToOwner
}

type SourceType string

const (
	SourceManual    SourceType = "manual"
	SourceEmailAuto SourceType = "email_auto"
	SourceAPIAuto   SourceType = "api_auto"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
	ApprovalSpam     ApprovalStatus = "spam"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Discount struct {
	Type  DiscountType `json:"type"`
	Value float64      `json:"value"`
}

type Rental struct {
	ID                 string         `json:"id"`
	VehicleID          *string        `json:"vehicleId,omitempty"`
	CustomerID         *string        `json:"customerId,omitempty"`
	CustomerName       string         `json:"customerName"`
	CustomerEmail      string         `json:"customerEmail,omitempty"`
	CustomerPhone      string         `json:"customerPhone,omitempty"`
	StartDate          time.Time      `json:"startDate"`
	EndDate            time.Time      `json:"endDate"`
	TotalPrice         float64        `json:"totalPrice"`
	Commission         float64        `json:"commission"`
	PaymentMethod      PaymentMethod  `json:"paymentMethod"`
	Company            string         `json:"company,omitempty"`
	Discount           *Discount      `json:"discount,omitempty"`
	CustomCommission   *Commission    `json:"customCommission,omitempty"`
	ExtraKmCharge      float64        `json:"extraKmCharge"`
	Paid               bool           `json:"paid"`
	Confirmed          bool           `json:"confirmed"`
	Status             RentalStatus   `json:"status"`
	IsFlexible         bool           `json:"isFlexible"`
	FlexibleEndDate    *time.Time     `json:"flexibleEndDate,omitempty"`
	HandoverPlace      string         `json:"handoverPlace,omitempty"`
	Deposit            float64        `json:"deposit"`
	AllowedKilometers  int            `json:"allowedKilometers"`
	HandoverProtocolID *string        `json:"handoverProtocolId,omitempty"`
	ReturnProtocolID   *string        `json:"returnProtocolId,omitempty"`
	SourceType         SourceType     `json:"sourceType"`
	ApprovalStatus     ApprovalStatus `json:"approvalStatus"`
	EmailID            *string        `json:"emailId,omitempty"`
	EmailContent       string         `json:"emailContent,omitempty"`
	ApprovedBy         *string        `json:"approvedBy,omitempty"`
	ApprovedAt         *time.Time     `json:"approvedAt,omitempty"`
	RejectionReason    string         `json:"rejectionReason,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
}

// EmailRentalRequest is a parsed rental-request e-mail ready for staging
type EmailRentalRequest struct {
	EmailID       string    `json:"emailId"`
	Subject       string    `json:"subject"`
	Body          string    `json:"body"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerPhone string    `json:"customerPhone"`
	VehicleCode   string    `json:"vehicleCode"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	TotalAmount   float64   `json:"totalAmount"`
	Deposit       float64   `json:"deposit"`
	DailyKm       int       `json:"dailyKilometers"`
	PaymentMethod string    `json:"paymentMethod"`
	HandoverPlace string    `json:"handoverPlace"`
	OrderNumber   string    `json:"orderNumber"`
}

// ApprovalStats counts staged rentals per approval status
type ApprovalStats struct {
	Pending  int `json:"pending" db:"pending"`
	Approved int `json:"approved" db:"approved"`
	Rejected int `json:"rejected" db:"rejected"`
	Spam     int `json:"spam" db:"spam"`
}
