package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/and161185/cargodesk/internal/errs"
	"github.com/and161185/cargodesk/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// shipmentColumns is the select list shared by every read, in scanShipment order.
const shipmentColumns = `id, user_id, tenant_id,
service, awb_no, origin, destination, shipment_date, invoice_number, invoice_date, box_count, service_details,
sender_name, sender_address, sender_adhaar, sender_contact, sender_email,
receiver_name, receiver_address, receiver_contact, receiver_email,
port_of_loading, packages,
pcs, weight, volumetric_weight, currency, total_amount, amount_in_words, billing_amount,
created_at`

// searchColumns are matched with ILIKE when a search term is given.
var searchColumns = []string{"awb_no", "sender_name", "receiver_name", "origin", "destination"}

// ShipmentRepo implements ShipmentRepository using PostgreSQL.
type ShipmentRepo struct{ db *DB }

// NewShipmentRepo constructs a shipment repository.
func NewShipmentRepo(db *DB) *ShipmentRepo { return &ShipmentRepo{db: db} }

// Create inserts a shipment and overwrites s with the row as stored.
func (r *ShipmentRepo) Create(ctx context.Context, s *model.Shipment) error {
	q := `
INSERT INTO shipments (
  user_id, tenant_id,
  service, awb_no, origin, destination, shipment_date, invoice_number, invoice_date, box_count, service_details,
  sender_name, sender_address, sender_adhaar, sender_contact, sender_email,
  receiver_name, receiver_address, receiver_contact, receiver_email,
  port_of_loading, packages,
  pcs, weight, volumetric_weight, currency, total_amount, amount_in_words, billing_amount
) VALUES (
  $1, $2,
  $3, $4, $5, $6, $7, $8, $9, $10, $11,
  $12, $13, $14, $15, $16,
  $17, $18, $19, $20,
  $21, $22,
  $23, $24, $25, $26, $27, $28, $29
)
RETURNING ` + shipmentColumns

	packages, err := encodePackages(s.Packages)
	if err != nil {
		return err
	}
	got, err := scanShipment(r.db.Pool.QueryRow(ctx, q,
		s.UserID, s.TenantID,
		s.Service, s.AwbNo, s.Origin, s.Destination, s.ShipmentDate, s.InvoiceNumber, s.InvoiceDate, s.BoxCount, s.ServiceDetails,
		s.SenderName, s.SenderAddress, s.SenderAdhaar, s.SenderContact, s.SenderEmail,
		s.ReceiverName, s.ReceiverAddress, s.ReceiverContact, s.ReceiverEmail,
		s.PortOfLoading, packages,
		s.Pcs, s.Weight, s.VolumetricWeight, s.Currency, s.TotalAmount, s.AmountInWords, s.BillingAmount,
	))
	if err != nil {
		return fmt.Errorf("insert shipment: %w", err)
	}
	// date columns drop the time part and numeric(14,2) rounds
	*s = *got
	return nil
}

// GetByID returns a single shipment owned by userID.
func (r *ShipmentRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Shipment, error) {
	q := `SELECT ` + shipmentColumns + ` FROM shipments WHERE id=$1 AND user_id=$2`
	s, err := scanShipment(r.db.Pool.QueryRow(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	return s, nil
}

// List returns rows matching f ordered newest first.
func (r *ShipmentRepo) List(ctx context.Context, f model.ShipmentFilter, limit, offset int) ([]model.Shipment, error) {
	where, args := buildWhere(f)
	n := len(args)
	q := `SELECT ` + shipmentColumns + ` FROM shipments WHERE ` + where +
		` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, limit, offset)

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	out := make([]model.Shipment, 0, limit)
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("list shipments: %w", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	return out, nil
}

// Totals counts rows matching f and sums their total_amount, NULL counting as zero.
func (r *ShipmentRepo) Totals(ctx context.Context, f model.ShipmentFilter) (model.ShipmentTotals, error) {
	where, args := buildWhere(f)
	q := `SELECT COUNT(*), COALESCE(SUM(total_amount), 0)::float8 FROM shipments WHERE ` + where
	var t model.ShipmentTotals
	if err := r.db.Pool.QueryRow(ctx, q, args...).Scan(&t.Count, &t.Revenue); err != nil {
		return model.ShipmentTotals{}, fmt.Errorf("shipment totals: %w", err)
	}
	return t, nil
}

// buildWhere renders the owner/tenant/search predicate and its positional args.
func buildWhere(f model.ShipmentFilter) (string, []any) {
	conds := []string{"user_id=$1"}
	args := []any{f.UserID}
	if f.TenantID != "" {
		args = append(args, f.TenantID)
		conds = append(conds, "tenant_id=$"+strconv.Itoa(len(args)))
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		args = append(args, "%"+escapeLike(term)+"%")
		p := "$" + strconv.Itoa(len(args))
		ors := make([]string, 0, len(searchColumns))
		for _, c := range searchColumns {
			ors = append(ors, c+" ILIKE "+p)
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}
	return strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string { return likeEscaper.Replace(s) }

func encodePackages(p []json.RawMessage) ([]byte, error) {
	if p == nil {
		p = []json.RawMessage{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode packages: %w", err)
	}
	return b, nil
}

func scanShipment(row pgx.Row) (*model.Shipment, error) {
	var (
		s        model.Shipment
		packages []byte
	)
	err := row.Scan(
		&s.ID, &s.UserID, &s.TenantID,
		&s.Service, &s.AwbNo, &s.Origin, &s.Destination, &s.ShipmentDate, &s.InvoiceNumber, &s.InvoiceDate, &s.BoxCount, &s.ServiceDetails,
		&s.SenderName, &s.SenderAddress, &s.SenderAdhaar, &s.SenderContact, &s.SenderEmail,
		&s.ReceiverName, &s.ReceiverAddress, &s.ReceiverContact, &s.ReceiverEmail,
		&s.PortOfLoading, &packages,
		&s.Pcs, &s.Weight, &s.VolumetricWeight, &s.Currency, &s.TotalAmount, &s.AmountInWords, &s.BillingAmount,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Packages = []json.RawMessage{}
	if len(packages) > 0 {
		if err := json.Unmarshal(packages, &s.Packages); err != nil {
			return nil, fmt.Errorf("decode packages: %w", err)
		}
	}
	return &s, nil
}
