package medicalinfo

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("medical info not found")
	ErrConflict = errors.New("medical info already exists")
)

// MedicalInfoRepository persists records keyed by medId. List returns records
// in insertion order.
type MedicalInfoRepository interface {
	Create(ctx context.Context, r *Record) error
	GetByMedID(ctx context.Context, medID string) (*Record, error)
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, medID string) error
	List(ctx context.Context) ([]*Record, error)
}
