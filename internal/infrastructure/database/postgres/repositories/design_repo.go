package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"

	"github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

const designColumns = `id, product_type, product_color, terms_accepted, logos, selection, placements, textures, version, created_at, updated_at`

// postgresDesignRepo stores one row per design.  Logos, placements and
// texture status are JSONB; selection mirrors placement order as TEXT[] so
// it can be indexed.
type postgresDesignRepo struct {
	db      queryExecutor
	catalog *customization.Catalog
	log     logging.Logger
}

// NewDesignRepository returns a customization.Repository backed by db.
func NewDesignRepository(db *sql.DB, catalog *customization.Catalog, log logging.Logger) customization.Repository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &postgresDesignRepo{db: db, catalog: catalog, log: log.Named("design-repo")}
}

type designRow struct {
	logos      []byte
	selection  []string
	placements []byte
	textures   []byte
}

func encodeRecord(rec customization.DesignRecord) (designRow, error) {
	var row designRow
	var err error
	if row.logos, err = json.Marshal(nonNilLogos(rec.Logos)); err != nil {
		return row, err
	}
	if row.placements, err = json.Marshal(nonNilPlacements(rec.Placements)); err != nil {
		return row, err
	}
	tex := rec.Textures
	if tex == nil {
		tex = map[customization.LogoID]customization.TextureStatus{}
	}
	if row.textures, err = json.Marshal(tex); err != nil {
		return row, err
	}
	row.selection = make([]string, 0, len(rec.Placements))
	for _, p := range rec.Placements {
		row.selection = append(row.selection, string(p.LocationID))
	}
	return row, nil
}

func (r *postgresDesignRepo) Create(ctx context.Context, d *customization.Design) error {
	rec := d.Record()
	row, err := encodeRecord(rec)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode design")
	}

	query := `INSERT INTO designs (` + designColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, $10)`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.ProductType, rec.ProductColor, rec.TermsAccepted,
		row.logos, pq.Array(row.selection), row.placements, row.textures,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.New(apperrors.ErrCodeConflict, "design already exists").WithDetail("id=" + string(rec.ID))
		}
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to insert design")
	}
	d.SetVersion(1)
	return nil
}

func (r *postgresDesignRepo) Update(ctx context.Context, d *customization.Design) error {
	rec := d.Record()
	row, err := encodeRecord(rec)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode design")
	}

	query := `UPDATE designs SET
			product_color = $3, terms_accepted = $4, logos = $5, selection = $6,
			placements = $7, textures = $8, updated_at = $9, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version`
	var version int64
	err = r.db.QueryRowContext(ctx, query,
		rec.ID, rec.Version, rec.ProductColor, rec.TermsAccepted,
		row.logos, pq.Array(row.selection), row.placements, row.textures, rec.UpdatedAt,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return r.missOrConflict(ctx, rec)
	}
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to update design")
	}
	d.SetVersion(version)
	return nil
}

// missOrConflict distinguishes a deleted row from a stale version after an
// UPDATE matched nothing.
func (r *postgresDesignRepo) missOrConflict(ctx context.Context, rec customization.DesignRecord) error {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM designs WHERE id = $1)`, rec.ID).Scan(&exists)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to check design")
	}
	if !exists {
		return designNotFound(rec.ID)
	}
	r.log.Warn("stale design write rejected",
		logging.DesignID(string(rec.ID)),
		logging.Int64("version", rec.Version),
	)
	return apperrors.New(apperrors.ErrCodeDesignVersionConflict, "design was modified concurrently").
		WithDetail("id=" + string(rec.ID))
}

func (r *postgresDesignRepo) Get(ctx context.Context, id customization.DesignID) (*customization.Design, error) {
	query := `SELECT ` + designColumns + ` FROM designs WHERE id = $1`
	rec, err := r.scanRecord(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, designNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	d, err := customization.RehydrateDesign(r.catalog, rec)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnknown, "failed to rehydrate design")
	}
	return d, nil
}

func (r *postgresDesignRepo) scanRecord(row scanner) (customization.DesignRecord, error) {
	var rec customization.DesignRecord
	var dr designRow
	err := row.Scan(
		&rec.ID, &rec.ProductType, &rec.ProductColor, &rec.TermsAccepted,
		&dr.logos, pq.Array(&dr.selection), &dr.placements, &dr.textures,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to scan design")
	}
	if err := json.Unmarshal(dr.logos, &rec.Logos); err != nil {
		return rec, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to decode logos")
	}
	if err := json.Unmarshal(dr.placements, &rec.Placements); err != nil {
		return rec, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to decode placements")
	}
	if len(dr.textures) > 0 {
		if err := json.Unmarshal(dr.textures, &rec.Textures); err != nil {
			return rec, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to decode textures")
		}
	}
	return rec, nil
}

func (r *postgresDesignRepo) Delete(ctx context.Context, id customization.DesignID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM designs WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to delete design")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to delete design")
	}
	if n == 0 {
		return designNotFound(id)
	}
	return nil
}

func designNotFound(id customization.DesignID) error {
	return apperrors.New(apperrors.ErrCodeDesignNotFound, "design not found").WithDetail("id=" + string(id))
}

func nonNilLogos(v []customization.LogoAsset) []customization.LogoAsset {
	if v == nil {
		return []customization.LogoAsset{}
	}
	return v
}

func nonNilPlacements(v []customization.SelectedLocation) []customization.SelectedLocation {
	if v == nil {
		return []customization.SelectedLocation{}
	}
	return v
}

//Personal.AI order the ending
