package staff

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salonhub/salonhub/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const staffCols = `id, vendor_id, name, title, service_ids, schedule, active, created_at, updated_at`

func scanStaff(row pgx.Row) (*Staff, error) {
	var st Staff
	var schedule []byte
	err := row.Scan(&st.ID, &st.VendorID, &st.Name, &st.Title, &st.ServiceIDs,
		&schedule, &st.Active, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(schedule) > 0 {
		if err := json.Unmarshal(schedule, &st.Schedule); err != nil {
			return nil, fmt.Errorf("decode staff schedule: %w", err)
		}
	}
	return &st, nil
}

func (r *repoPG) Create(ctx context.Context, st *Staff) error {
	st.ID = uuid.New()
	schedule, err := json.Marshal(st.Schedule)
	if err != nil {
		return fmt.Errorf("encode staff schedule: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO staff (id, vendor_id, name, title, service_ids, schedule, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		st.ID, st.VendorID, st.Name, st.Title, st.ServiceIDs, schedule, st.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, st *Staff) error {
	schedule, err := json.Marshal(st.Schedule)
	if err != nil {
		return fmt.Errorf("encode staff schedule: %w", err)
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff SET name=$2, title=$3, service_ids=$4, schedule=$5, active=$6, updated_at=NOW()
		WHERE id = $1`,
		st.ID, st.Name, st.Title, st.ServiceIDs, schedule, st.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE staff SET active=$2, updated_at=NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*Staff, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+staffCols+` FROM staff WHERE vendor_id = $1 AND active ORDER BY id ASC`, vendorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Staff
	for rows.Next() {
		st, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, st)
	}
	return items, rows.Err()
}
