package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/cargodesk/internal/errs"
	"github.com/and161185/cargodesk/internal/model"
	"github.com/and161185/cargodesk/internal/repository"
	"github.com/and161185/cargodesk/internal/request"
)

// ShipmentService defines operations over a user's consignments.
// Identity always comes from verified claims, never from the payload.
type ShipmentService interface {
	// Create validates and stores a shipment owned by the caller.
	Create(ctx context.Context, who model.Claims, in request.Shipment) (*model.Shipment, error)
	// List returns one page of the caller's shipments with totals over every match.
	List(ctx context.Context, who model.Claims, page, limit int, search string) (model.ShipmentPage, error)
	// Get returns one of the caller's shipments.
	Get(ctx context.Context, who model.Claims, id uuid.UUID) (*model.Shipment, error)
}

type ShipmentServiceImpl struct {
	repo repository.ShipmentRepository
}

// NewShipmentService constructs ShipmentService.
func NewShipmentService(repo repository.ShipmentRepository) *ShipmentServiceImpl {
	return &ShipmentServiceImpl{repo: repo}
}

// Create validates in, maps it onto the storage row and inserts it.
func (s *ShipmentServiceImpl) Create(ctx context.Context, who model.Claims, in request.Shipment) (*model.Shipment, error) {
	if who.UserID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	if err := request.FromValidation(in.Validate()); err != nil {
		return nil, err
	}
	row := toShipment(who, in)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// List clamps paging input, then runs the page query and the totals query.
// The two reads are independent; a concurrent insert may skew them slightly.
func (s *ShipmentServiceImpl) List(ctx context.Context, who model.Claims, page, limit int, search string) (model.ShipmentPage, error) {
	if who.UserID == uuid.Nil {
		return model.ShipmentPage{}, errs.ErrUnauthorized
	}
	if page < 1 {
		page = request.DefaultPage
	}
	if limit < 1 {
		limit = request.DefaultLimit
	}

	f := model.ShipmentFilter{UserID: who.UserID, TenantID: who.TenantID, Search: search}
	rows, err := s.repo.List(ctx, f, limit, pageOffset(page, limit))
	if err != nil {
		return model.ShipmentPage{}, err
	}
	tot, err := s.repo.Totals(ctx, f)
	if err != nil {
		return model.ShipmentPage{}, err
	}
	if rows == nil {
		rows = []model.Shipment{}
	}
	return model.ShipmentPage{
		Data: rows,
		Meta: model.PageMeta{
			Total:        tot.Count,
			TotalRevenue: tot.Revenue,
			Page:         page,
			Limit:        limit,
			TotalPages:   totalPages(tot.Count, limit),
		},
	}, nil
}

// Get returns a shipment by id if the caller owns it.
func (s *ShipmentServiceImpl) Get(ctx context.Context, who model.Claims, id uuid.UUID) (*model.Shipment, error) {
	if who.UserID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	if id == uuid.Nil {
		return nil, errs.ErrNotFound
	}
	return s.repo.GetByID(ctx, who.UserID, id)
}

// pageOffset saturates instead of wrapping for absurd page/limit pairs.
func pageOffset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

func totalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total-1)/int64(limit) + 1)
}

// toShipment is the explicit external → storage field mapping.
func toShipment(who model.Claims, in request.Shipment) *model.Shipment {
	h, snd, rcv, o := in.Header, in.Sender, in.Receiver, in.Other
	return &model.Shipment{
		UserID:   who.UserID,
		TenantID: who.TenantID,

		Service:        h.Service,
		AwbNo:          h.AwbNo,
		Origin:         deref(h.Origin),
		Destination:    deref(h.Destination),
		ShipmentDate:   parseDate(h.Date),
		InvoiceNumber:  h.InvoiceNo,
		InvoiceDate:    parseDate(h.InvoiceDate),
		BoxCount:       parseBoxCount(h.BoxNumber.Value),
		ServiceDetails: h.ServiceDetails,

		SenderName:    deref(snd.Name),
		SenderAddress: deref(snd.Address),
		SenderAdhaar:  snd.Adhaar,
		SenderContact: snd.Contact,
		SenderEmail:   snd.Email,

		ReceiverName:    deref(rcv.Name),
		ReceiverAddress: deref(rcv.Address),
		ReceiverContact: rcv.Contact,
		ReceiverEmail:   rcv.Email,

		PortOfLoading: in.Routing.PortOfLoading,
		Packages:      in.Items,

		Pcs:              o.Pcs.Ptr(),
		Weight:           o.Weight,
		VolumetricWeight: o.VolumetricWeight,
		Currency:         o.Currency,
		TotalAmount:      o.TotalAmount.Ptr(),
		AmountInWords:    o.AmountInWords,
		BillingAmount:    o.BillingAmount.Ptr(),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseBoxCount reads the leading integer of s ("12 boxes" is 12).
// No digits, a zero result, or a count outside the int4 column yields 1.
func parseBoxCount(s string) int {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
		if n > math.MaxInt32 {
			return 1
		}
	}
	if digits == 0 || n == 0 {
		return 1
	}
	if neg {
		return -n
	}
	return n
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
	"02/01/2006",
	"02-01-2006",
}

// parseDate accepts the layouts clients send; anything else is stored as absent.
func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
