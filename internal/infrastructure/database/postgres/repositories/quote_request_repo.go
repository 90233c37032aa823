package repositories

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/pricing"
	apperrors "github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

type postgresQuoteRequestRepo struct {
	db queryExecutor
}

// NewQuoteRequestRepository returns a pricing.RequestRepository backed by db.
func NewQuoteRequestRepository(db *sql.DB) pricing.RequestRepository {
	return &postgresQuoteRequestRepo{db: db}
}

func (r *postgresQuoteRequestRepo) Save(ctx context.Context, q pricing.QuoteRequest) error {
	snap, err := json.Marshal(q.Snapshot)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode snapshot")
	}
	query := `INSERT INTO quote_requests
		(id, design_id, kind, quantity, currency, unit_price, line_total, configured_locations, snapshot, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.db.ExecContext(ctx, query,
		q.ID, q.DesignID, q.Kind, q.Item.Quantity, q.Item.Currency,
		int64(q.Item.UnitPrice), int64(q.Item.LineTotal), q.Item.ConfiguredLocations,
		snap, q.CreatedAt,
	)
	if isUniqueViolation(err) {
		return apperrors.New(apperrors.ErrCodeConflict, "quote request already recorded").WithDetail("id=" + q.ID)
	}
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to insert quote request")
	}
	return nil
}

func (r *postgresQuoteRequestRepo) ListByDesign(ctx context.Context, id customization.DesignID) ([]pricing.QuoteRequest, error) {
	query := `SELECT id, design_id, kind, quantity, currency, unit_price, line_total, configured_locations, snapshot, created_at
		FROM quote_requests WHERE design_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to list quote requests")
	}
	defer rows.Close()

	var out []pricing.QuoteRequest
	for rows.Next() {
		q, err := scanQuoteRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to iterate quote requests")
	}
	return out, nil
}

func scanQuoteRequest(row scanner) (pricing.QuoteRequest, error) {
	var q pricing.QuoteRequest
	var unit, total int64
	var snap []byte
	err := row.Scan(&q.ID, &q.DesignID, &q.Kind, &q.Item.Quantity, &q.Item.Currency,
		&unit, &total, &q.Item.ConfiguredLocations, &snap, &q.CreatedAt)
	if err != nil {
		return q, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to scan quote request")
	}
	q.Item.UnitPrice = pricing.Amount(unit)
	q.Item.LineTotal = pricing.Amount(total)
	if err := json.Unmarshal(snap, &q.Snapshot); err != nil {
		return q, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to decode snapshot")
	}
	q.Item.ProductType = q.Snapshot.ProductType
	return q, nil
}

//Personal.AI order the ending
