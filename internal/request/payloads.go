package request

import (
	"encoding/json"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Pagination defaults for list endpoints.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Login is the /api/auth/login body.
type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TenantID string `json:"tenantId"`
}

// Validate will validate the payload
func (r Login) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// NewUser is the operator input for provisioning a login.
type NewUser struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TenantID string `json:"tenantId"`
}

// Validate will validate the payload
func (r NewUser) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 0)),
	)
}

// Shipment is the nested /api/form/create body.
type Shipment struct {
	Header   Header            `json:"header"`
	Sender   Sender            `json:"sender"`
	Receiver Receiver          `json:"receiver"`
	Routing  Routing           `json:"routing"`
	Items    []json.RawMessage `json:"items"`
	Other    Other             `json:"other"`
}

// Header carries consignment identification.
type Header struct {
	Service        *string `json:"service"`
	AwbNo          *string `json:"awbNo"`
	Origin         *string `json:"origin"`
	Destination    *string `json:"destination"`
	Date           *string `json:"date"`
	InvoiceNo      *string `json:"invoiceNo"`
	InvoiceDate    *string `json:"invoiceDate"`
	BoxNumber      Text    `json:"boxNumber"`
	ServiceDetails *string `json:"serviceDetails"`
}

// Sender is the consignor block.
type Sender struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Adhaar  *string `json:"adhaar"`
	Contact *string `json:"contact"`
	Email   *string `json:"email"`
}

// Receiver is the consignee block.
type Receiver struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Contact *string `json:"contact"`
	Email   *string `json:"email"`
}

// Routing holds transit details.
type Routing struct {
	PortOfLoading *string `json:"portOfLoading"`
}

// Other holds piece counts and money.
type Other struct {
	Pcs              Number  `json:"pcs"`
	Weight           *string `json:"weight"`
	VolumetricWeight *string `json:"volumetricWeight"`
	Currency         *string `json:"currency"`
	TotalAmount      Number  `json:"totalAmount"`
	AmountInWords    *string `json:"amountInWords"`
	BillingAmount    Number  `json:"billingAmount"`
}

// Validate will validate the payload
func (r Shipment) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Header),
		validation.Field(&r.Sender),
		validation.Field(&r.Receiver),
		validation.Field(&r.Routing),
		validation.Field(&r.Items, validation.NotNil),
		validation.Field(&r.Other),
	)
}

// Validate will validate the header block. Origin and destination must be
// present; an empty string is accepted.
func (h Header) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Origin, validation.NotNil),
		validation.Field(&h.Destination, validation.NotNil),
	)
}

// Validate will validate the sender block. An empty email means "not provided".
func (s Sender) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.NotNil),
		validation.Field(&s.Address, validation.NotNil),
		validation.Field(&s.Email, is.Email),
	)
}

// Validate will validate the receiver block. An empty email means "not provided".
func (r Receiver) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NotNil),
		validation.Field(&r.Address, validation.NotNil),
		validation.Field(&r.Email, is.Email),
	)
}

// Validate is a no-op; every routing field is optional.
func (Routing) Validate() error { return nil }

// Validate will validate the numeric fields.
func (o Other) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Pcs),
		validation.Field(&o.TotalAmount),
		validation.Field(&o.BillingAmount),
	)
}

// ParsePage reads page/limit query values. Unparsable or non-positive
// values fall back to defaults. Limit is not capped.
func ParsePage(page, limit string) (int, int) {
	p, err := strconv.Atoi(page)
	if err != nil || p < 1 {
		p = DefaultPage
	}
	l, err := strconv.Atoi(limit)
	if err != nil || l < 1 {
		l = DefaultLimit
	}
	return p, l
}
