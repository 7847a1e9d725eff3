package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/and161185/cargodesk/internal/errs"
	"github.com/and161185/cargodesk/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var shipmentCols = []string{
	"id", "user_id", "tenant_id",
	"service", "awb_no", "origin", "destination", "shipment_date", "invoice_number", "invoice_date", "box_count", "service_details",
	"sender_name", "sender_address", "sender_adhaar", "sender_contact", "sender_email",
	"receiver_name", "receiver_address", "receiver_contact", "receiver_email",
	"port_of_loading", "packages",
	"pcs", "weight", "volumetric_weight", "currency", "total_amount", "amount_in_words", "billing_amount",
	"created_at",
}

func strp(s string) *string        { return &s }
func fltp(f float64) *float64      { return &f }
func timep(t time.Time) *time.Time { return &t }

func sampleShipment(userID uuid.UUID) model.Shipment {
	return model.Shipment{
		ID:              uuid.Must(uuid.NewV4()),
		UserID:          userID,
		TenantID:        "acme",
		AwbNo:           strp("AWB-1"),
		Origin:          "BOM",
		Destination:     "DXB",
		ShipmentDate:    timep(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		BoxCount:        2,
		SenderName:      "Sender",
		SenderAddress:   "Street 1",
		ReceiverName:    "Receiver",
		ReceiverAddress: "Street 2",
		Packages:        []json.RawMessage{json.RawMessage(`{"qty":1}`)},
		TotalAmount:     fltp(100.5),
		CreatedAt:       time.Now().UTC(),
	}
}

func shipmentRow(s model.Shipment) []any {
	pk, _ := json.Marshal(s.Packages)
	return []any{
		s.ID, s.UserID, s.TenantID,
		s.Service, s.AwbNo, s.Origin, s.Destination, s.ShipmentDate, s.InvoiceNumber, s.InvoiceDate, s.BoxCount, s.ServiceDetails,
		s.SenderName, s.SenderAddress, s.SenderAdhaar, s.SenderContact, s.SenderEmail,
		s.ReceiverName, s.ReceiverAddress, s.ReceiverContact, s.ReceiverEmail,
		s.PortOfLoading, pk,
		s.Pcs, s.Weight, s.VolumetricWeight, s.Currency, s.TotalAmount, s.AmountInWords, s.BillingAmount,
		s.CreatedAt,
	}
}

func anyArgs(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = pgxmock.AnyArg()
	}
	return out
}

func TestShipmentRepo_Create_ReturnsStoredRow(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewShipmentRepo(db)

	userID := uuid.Must(uuid.NewV4())
	s := sampleShipment(userID)
	s.ID = uuid.Nil
	s.CreatedAt = time.Time{}
	s.ShipmentDate = timep(time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC))
	s.TotalAmount = fltp(99.999)

	stored := s
	stored.ID = uuid.Must(uuid.NewV4())
	stored.CreatedAt = time.Now().UTC()
	stored.ShipmentDate = timep(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	stored.TotalAmount = fltp(100)

	args := anyArgs(29)
	args[0] = userID
	args[1] = "acme"
	args[9] = 2                      // box_count
	args[21] = []byte(`[{"qty":1}]`) // packages

	mock.ExpectQuery(`INSERT INTO shipments \( user_id, tenant_id, service, awb_no .* RETURNING id, user_id, tenant_id`).
		WithArgs(args...).
		WillReturnRows(pgxmock.NewRows(shipmentCols).AddRow(shipmentRow(stored)...))

	require.NoError(t, r.Create(context.Background(), &s))
	require.Equal(t, stored.ID, s.ID)
	require.Equal(t, stored.CreatedAt, s.CreatedAt)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *s.ShipmentDate)
	require.Equal(t, 100.0, *s.TotalAmount)
	require.Equal(t, "BOM", s.Origin)
	require.Len(t, s.Packages, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShipmentRepo_Create_NilPackagesStoredAsEmptyArray(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewShipmentRepo(db)

	s := sampleShipment(uuid.Must(uuid.NewV4()))
	s.Packages = nil

	args := anyArgs(29)
	args[21] = []byte(`[]`)
	stored := s
	stored.Packages = []json.RawMessage{}
	mock.ExpectQuery(`INSERT INTO shipments`).
		WithArgs(args...).
		WillReturnRows(pgxmock.NewRows(shipmentCols).AddRow(shipmentRow(stored)...))

	require.NoError(t, r.Create(context.Background(), &s))
	require.NotNil(t, s.Packages)
	require.Empty(t, s.Packages)
}

func TestShipmentRepo_Create_DBError(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewShipmentRepo(db)

	s := sampleShipment(uuid.Must(uuid.NewV4()))
	boom := errors.New("insert failed")
	mock.ExpectQuery(`INSERT INTO shipments`).
		WithArgs(anyArgs(29)...).
		WillReturnError(boom)

	err := r.Create(context.Background(), &s)
	require.ErrorIs(t, err, boom)
}

func TestShipmentRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewShipmentRepo(db)

	userID := uuid.Must(uuid.NewV4())
	want := sampleShipment(userID)

	mock.ExpectQuery(`FROM shipments WHERE id=\$1 AND user_id=\$2`).
		WithArgs(want.ID, userID).
		WillReturnRows(pgxmock.NewRows(shipmentCols).AddRow(shipmentRow(want)...))

	got, err := r.GetByID(context.Background(), userID, want.ID)
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, "AWB-1", *got.AwbNo)
	require.Nil(t, got.Service)
	require.Equal(t, 100.5, *got.TotalAmount)
	require.Len(t, got.Packages, 1)
	require.JSONEq(t, `{"qty":1}`, string(got.Packages[0]))

	mock.ExpectQuery(`FROM shipments WHERE id=\$1 AND user_id=\$2`).
		WithArgs(want.ID, userID).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(context.Background(), userID, want.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestShipmentRepo_List_OwnerOnly(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewShipmentRepo(db)

	userID := uuid.Must(uuid.NewV4())
	a, b := sampleShipment(userID), sampleShipment(userID)

	mock.ExpectQuery(`FROM shipments WHERE user_id=\$1 ORDER BY created_at DESC, id DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(userID, 10, 20).
		WillReturnRows(pgxmock.NewRows(shipmentCols).
			AddRow(shipmentRow(a)...).
			AddRow(shipmentRow(b)...))

	out, err := r.List(context.Background(), model.ShipmentFilter{UserID: userID}, 10, 20)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, a.ID, out[0].ID)
	require.Equal(t, b.ID, out[1].ID)
}

func TestShipmentRepo_List_TenantAndSearch(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewShipmentRepo(db)

	userID := uuid.Must(uuid.NewV4())
	f := model.ShipmentFilter{UserID: userID, TenantID: "acme", Search: " 50%_off "}

	mock.ExpectQuery(`WHERE user_id=\$1 AND tenant_id=\$2 AND \(awb_no ILIKE \$3 OR sender_name ILIKE \$3 OR receiver_name ILIKE \$3 OR origin ILIKE \$3 OR destination ILIKE \$3\) ORDER BY created_at DESC, id DESC LIMIT \$4 OFFSET \$5`).
		WithArgs(userID, "acme", `%50\%\_off%`, 5, 0).
		WillReturnRows(pgxmock.NewRows(shipmentCols))

	out, err := r.List(context.Background(), f, 5, 0)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestShipmentRepo_List_QueryError(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewShipmentRepo(db)

	userID := uuid.Must(uuid.NewV4())
	boom := errors.New("timeout")
	mock.ExpectQuery(`FROM shipments`).WithArgs(userID, 10, 0).WillReturnError(boom)

	_, err := r.List(context.Background(), model.ShipmentFilter{UserID: userID}, 10, 0)
	require.ErrorIs(t, err, boom)
}

func TestShipmentRepo_Totals(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewShipmentRepo(db)

	userID := uuid.Must(uuid.NewV4())
	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(total_amount\), 0\)::float8 FROM shipments WHERE user_id=\$1 AND \(awb_no ILIKE \$2`).
		WithArgs(userID, "%bom%").
		WillReturnRows(pgxmock.NewRows([]string{"count", "sum"}).AddRow(int64(3), 450.75))

	tot, err := r.Totals(context.Background(), model.ShipmentFilter{UserID: userID, Search: "bom"})
	require.NoError(t, err)
	require.Equal(t, int64(3), tot.Count)
	require.Equal(t, 450.75, tot.Revenue)

	boom := errors.New("db down")
	mock.ExpectQuery(`SELECT COUNT`).WithArgs(userID).WillReturnError(boom)
	_, err = r.Totals(context.Background(), model.ShipmentFilter{UserID: userID})
	require.ErrorIs(t, err, boom)
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	require.Equal(t, `a\\b\%c\_d`, escapeLike(`a\b%c_d`))
	require.Equal(t, "plain", escapeLike("plain"))
}
