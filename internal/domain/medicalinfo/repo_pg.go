package medicalinfo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type medicalInfoRepoPG struct{ conn queryable }

func NewMedicalInfoRepoPG(pool *pgxpool.Pool) MedicalInfoRepository {
	return &medicalInfoRepoPG{conn: pool}
}

const miCols = `med_id, owner, medication, past_visits, permissioned_doctors`

func (r *medicalInfoRepoPG) scanRow(row pgx.Row) (*Record, error) {
	var m Record
	var medID string
	err := row.Scan(&medID, &m.Owner, &m.Medication, &m.PastVisitsArray, &m.PermissionedDoctorsID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m.Class = ClassName
	m.MedID = &medID
	return &m, nil
}

func (r *medicalInfoRepoPG) Create(ctx context.Context, m *Record) error {
	tag, err := r.conn.Exec(ctx, `
		INSERT INTO medical_info (med_id, owner, medication, past_visits, permissioned_doctors)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (med_id) DO NOTHING`,
		m.ID(), m.Owner, m.Medication, m.PastVisitsArray, m.PermissionedDoctorsID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (r *medicalInfoRepoPG) GetByMedID(ctx context.Context, medID string) (*Record, error) {
	return r.scanRow(r.conn.QueryRow(ctx, `SELECT `+miCols+` FROM medical_info WHERE med_id = $1`, medID))
}

func (r *medicalInfoRepoPG) Update(ctx context.Context, m *Record) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE medical_info SET owner=$2, medication=$3, past_visits=$4,
			permissioned_doctors=$5, updated_at=NOW()
		WHERE med_id = $1`,
		m.ID(), m.Owner, m.Medication, m.PastVisitsArray, m.PermissionedDoctorsID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *medicalInfoRepoPG) Delete(ctx context.Context, medID string) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM medical_info WHERE med_id = $1`, medID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *medicalInfoRepoPG) List(ctx context.Context) ([]*Record, error) {
	rows, err := r.conn.Query(ctx, `SELECT `+miCols+` FROM medical_info ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Record
	for rows.Next() {
		m, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
