package medicalinfo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS medical_info (
	med_id               TEXT PRIMARY KEY,
	owner                TEXT,
	medication           TEXT,
	past_visits          TEXT,
	permissioned_doctors TEXT,
	created_at           TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at           TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Sequence columns are stored as JSON arrays; NULL means absent.
type medicalInfoRepoSQLite struct{ db *sql.DB }

// NewMedicalInfoRepoSQLite creates the medical_info table if needed and
// returns a repository over it.
func NewMedicalInfoRepoSQLite(ctx context.Context, db *sql.DB) (MedicalInfoRepository, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("create medical_info table: %w", err)
	}
	return &medicalInfoRepoSQLite{db: db}, nil
}

func encodeSeq(s []string) (any, error) {
	if s == nil {
		return nil, nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func decodeSeq(v sql.NullString) ([]string, error) {
	if !v.Valid {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(v.String), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *medicalInfoRepoSQLite) args(m *Record) ([]any, error) {
	visits, err := encodeSeq(m.PastVisitsArray)
	if err != nil {
		return nil, fmt.Errorf("encode pastVisitsArray: %w", err)
	}
	doctors, err := encodeSeq(m.PermissionedDoctorsID)
	if err != nil {
		return nil, fmt.Errorf("encode permissionedDoctorsId: %w", err)
	}
	return []any{m.ID(), m.Owner, m.Medication, visits, doctors}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *medicalInfoRepoSQLite) scanRow(row rowScanner) (*Record, error) {
	var (
		medID           string
		owner, med      sql.NullString
		visits, doctors sql.NullString
	)
	err := row.Scan(&medID, &owner, &med, &visits, &doctors)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m := &Record{Class: ClassName, MedID: &medID}
	if owner.Valid {
		m.Owner = strPtr(owner.String)
	}
	if med.Valid {
		m.Medication = strPtr(med.String)
	}
	if m.PastVisitsArray, err = decodeSeq(visits); err != nil {
		return nil, fmt.Errorf("decode past_visits: %w", err)
	}
	if m.PermissionedDoctorsID, err = decodeSeq(doctors); err != nil {
		return nil, fmt.Errorf("decode permissioned_doctors: %w", err)
	}
	return m, nil
}

func (r *medicalInfoRepoSQLite) Create(ctx context.Context, m *Record) error {
	args, err := r.args(m)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO medical_info (med_id, owner, medication, past_visits, permissioned_doctors)
		VALUES (?,?,?,?,?)
		ON CONFLICT (med_id) DO NOTHING`, args...)
	if err != nil {
		return err
	}
	return affected(res, ErrConflict)
}

func (r *medicalInfoRepoSQLite) GetByMedID(ctx context.Context, medID string) (*Record, error) {
	return r.scanRow(r.db.QueryRowContext(ctx, `SELECT `+miCols+` FROM medical_info WHERE med_id = ?`, medID))
}

func (r *medicalInfoRepoSQLite) Update(ctx context.Context, m *Record) error {
	args, err := r.args(m)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE medical_info SET owner=?2, medication=?3, past_visits=?4,
			permissioned_doctors=?5, updated_at=CURRENT_TIMESTAMP
		WHERE med_id = ?1`, args...)
	if err != nil {
		return err
	}
	return affected(res, ErrNotFound)
}

func (r *medicalInfoRepoSQLite) Delete(ctx context.Context, medID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medical_info WHERE med_id = ?`, medID)
	if err != nil {
		return err
	}
	return affected(res, ErrNotFound)
}

func (r *medicalInfoRepoSQLite) List(ctx context.Context) ([]*Record, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+miCols+` FROM medical_info ORDER BY rowid`)
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

func affected(res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return none
	}
	return nil
}
