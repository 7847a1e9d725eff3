package repository

import (
	"context"

	"github.com/and161185/cargodesk/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ShipmentRepository stores consignment rows owned by users.
type ShipmentRepository interface {
	// Create inserts s and replaces it with the persisted row.
	Create(ctx context.Context, s *model.Shipment) error

	// GetByID returns a single shipment owned by userID.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Shipment, error)

	// List returns one page of matching rows, newest first.
	List(ctx context.Context, f model.ShipmentFilter, limit, offset int) ([]model.Shipment, error)

	// Totals counts matching rows and sums their total_amount (NULL as zero).
	Totals(ctx context.Context, f model.ShipmentFilter) (model.ShipmentTotals, error)
}
