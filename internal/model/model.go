// Package model defines domain entities used by services and repositories.
package model

import (
	"encoding/json"
	"time"

	"github.com/gofrs/uuid/v5"
)

// DefaultTenant is assigned to users created without an explicit tenant.
const DefaultTenant = "default"

// User represents an account stored on the server. The password is never stored in plaintext.
type User struct {
	ID        uuid.UUID // PK
	Email     string    // unique, login key
	PwdHash   string    // argon2id PHC string
	TenantID  string
	CreatedAt time.Time
}

// Summary returns the public-safe view of the user.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID.String(), Email: u.Email, TenantID: u.TenantID}
}

// UserSummary is what clients see about a user.
type UserSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	TenantID string `json:"tenant_id"`
}

// Claims is the identity carried by a session token.
type Claims struct {
	UserID   uuid.UUID
	Email    string
	TenantID string
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      UserSummary
}

// Shipment is a single consignment row. Optional columns are pointers so that
// absent values round-trip as NULL rather than zero values.
type Shipment struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	TenantID string    `json:"tenant_id"`

	// header
	Service        *string    `json:"service"`
	AwbNo          *string    `json:"awb_no"`
	Origin         string     `json:"origin"`
	Destination    string     `json:"destination"`
	ShipmentDate   *time.Time `json:"shipment_date"`
	InvoiceNumber  *string    `json:"invoice_number"`
	InvoiceDate    *time.Time `json:"invoice_date"`
	BoxCount       int        `json:"box_count"`
	ServiceDetails *string    `json:"service_details"`

	// sender
	SenderName    string  `json:"sender_name"`
	SenderAddress string  `json:"sender_address"`
	SenderAdhaar  *string `json:"sender_adhaar"`
	SenderContact *string `json:"sender_contact"`
	SenderEmail   *string `json:"sender_email"`

	// receiver
	ReceiverName    string  `json:"receiver_name"`
	ReceiverAddress string  `json:"receiver_address"`
	ReceiverContact *string `json:"receiver_contact"`
	ReceiverEmail   *string `json:"receiver_email"`

	// routing
	PortOfLoading *string `json:"port_of_loading"`

	// opaque ordered line items
	Packages []json.RawMessage `json:"packages"`

	// totals
	Pcs              *float64 `json:"pcs"`
	Weight           *string  `json:"weight"`
	VolumetricWeight *string  `json:"volumetric_weight"`
	Currency         *string  `json:"currency"`
	TotalAmount      *float64 `json:"total_amount"`
	AmountInWords    *string  `json:"amount_in_words"`
	BillingAmount    *float64 `json:"billing_amount"`

	CreatedAt time.Time `json:"created_at"`
}

// ShipmentFilter selects the shipments of one owner.
type ShipmentFilter struct {
	UserID   uuid.UUID
	TenantID string // empty means any tenant
	Search   string // case-insensitive substring over awb/sender/receiver/origin/destination
}

// ShipmentTotals aggregates every row matching a filter.
type ShipmentTotals struct {
	Count   int64
	Revenue float64
}

// PageMeta describes a page of results.
type PageMeta struct {
	Total        int64   `json:"total"`
	TotalRevenue float64 `json:"totalRevenue"`
	Page         int     `json:"page"`
	Limit        int     `json:"limit"`
	TotalPages   int     `json:"totalPages"`
}

// ShipmentPage is one page of a user's shipments.
type ShipmentPage struct {
	Data []Shipment `json:"data"`
	Meta PageMeta   `json:"meta"`
}
