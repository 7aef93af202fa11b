// ABOUTME: Data models for drilling field-report entities
// ABOUTME: Defines Client, Contact, RateEntry, Invoice, Expense, and ApprovalFlag structs
package models

import (
	"time"

	"github.com/google/uuid"
)

// RateType constants.
const (
	RatePerFoot = "per_foot"
	RatePerHour = "per_hour"
)

type Contact struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Title     string    `json:"title,omitempty"`
	IsPrimary bool      `json:"isPrimary"`
}

type Client struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address,omitempty"`
	BillingRate float64   `json:"billingRate"`
	RateType    string    `json:"rateType"`
	Notes       string    `json:"notes,omitempty"`
	Contacts    []Contact `json:"contacts,omitempty"`
}

// PrimaryContact returns the contact flagged primary. If no contact carries
// the flag, the first contact is treated as primary. Returns nil for clients
// with no contacts.
func (c *Client) PrimaryContact() *Contact {
	if len(c.Contacts) == 0 {
		return nil
	}
	for i := range c.Contacts {
		if c.Contacts[i].IsPrimary {
			return &c.Contacts[i]
		}
	}
	return &c.Contacts[0]
}

// RateEntry is one rate revision for an equipment or labor category.
// Entries may be appended out of date order; resolution sorts on demand.
type RateEntry struct {
	EffectiveDate string  `json:"effectiveDate"` // ISO date, YYYY-MM-DD
	HourlyRate    float64 `json:"hourlyRate"`
	Description   string  `json:"description,omitempty"`
}

// RateSheet maps an equipment/labor category to its rate revisions.
type RateSheet map[string][]RateEntry

// Invoice status constants.
const (
	InvoiceDraft = "draft"
	InvoiceSent  = "sent"
	InvoicePaid  = "paid"
)

type InvoiceLine struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitRate    float64 `json:"unitRate"`
	Amount      float64 `json:"amount"`
}

type Invoice struct {
	ID         uuid.UUID     `json:"id"`
	Number     string        `json:"number"`
	ClientID   uuid.UUID     `json:"clientId"`
	ClientName string        `json:"clientName"`
	Lines      []InvoiceLine `json:"lines,omitempty"`
	Total      float64       `json:"total"`
	Status     string        `json:"status"`
	IssuedAt   time.Time     `json:"issuedAt"`
	PaidAt     *time.Time    `json:"paidAt,omitempty"`
}

type Expense struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"` // ISO date, YYYY-MM-DD
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Amount      float64   `json:"amount"`
	Receipt     string    `json:"receipt,omitempty"`
}

// ApprovalFlag marks a daily field report as approved for invoicing.
type ApprovalFlag struct {
	ID         string    `json:"id"`
	ApprovedAt time.Time `json:"approvedAt"`
}
