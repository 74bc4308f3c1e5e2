package domain

import (
	"encoding/json"
	"time"
)

type HandoverProtocol struct {
	ID               string          `json:"id"`
	RentalID         string          `json:"rentalId"`
	VehicleCondition json.RawMessage `json:"vehicleCondition,omitempty"`
	FuelLevel        int             `json:"fuelLevel"`
	Mileage          int             `json:"mileage"`
	Photos           []string        `json:"photos"`
	Signature        string          `json:"signature,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	PDFPath          string          `json:"pdfPath,omitempty"`
	CreatedBy        string          `json:"createdBy,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// Locked reports whether a PDF has been generated for the protocol
func (p *HandoverProtocol) Locked() bool { return p.PDFPath != "" }

type ReturnProtocol struct {
	HandoverProtocol
	HandoverProtocolID string  `json:"handoverProtocolId"`
	KilometersUsed     int     `json:"kilometersUsed"`
	KilometerFee       float64 `json:"kilometerFee"`
	FuelFee            float64 `json:"fuelFee"`
	TotalExtraFees     float64 `json:"totalExtraFees"`
}

// RentalProtocols groups both protocols of a rental
type RentalProtocols struct {
	Handover *HandoverProtocol `json:"handover,omitempty"`
	Return   *ReturnProtocol   `json:"return,omitempty"`
}
