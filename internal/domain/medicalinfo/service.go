package medicalinfo

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalid marks a payload rejected by validation.
var ErrInvalid = errors.New("invalid medical info")

// Change operations passed to a ChangeNotifier.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// ChangeNotifier is told about every committed write.
type ChangeNotifier interface {
	Notify(ctx context.Context, op, medID string)
}

type Service struct {
	repo     MedicalInfoRepository
	notifier ChangeNotifier
}

func NewService(repo MedicalInfoRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) SetNotifier(n ChangeNotifier) { s.notifier = n }

func (s *Service) notify(ctx context.Context, op, medID string) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, op, medID)
	}
}

func checkClass(class string) error {
	if class != "" && class != ClassName {
		return fmt.Errorf("%w: $class must be %s, got %q", ErrInvalid, ClassName, class)
	}
	return nil
}

func (s *Service) CreateMedicalInfo(ctx context.Context, p *CreatePayload) (*Record, error) {
	if err := checkClass(p.Class); err != nil {
		return nil, err
	}
	if isAbsent(p.MedID) {
		return nil, fmt.Errorf("%w: medId is required", ErrInvalid)
	}
	r := p.Record()
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	s.notify(ctx, ChangeCreated, r.ID())
	return r, nil
}

func (s *Service) GetMedicalInfo(ctx context.Context, medID string) (*Record, error) {
	return s.repo.GetByMedID(ctx, medID)
}

func (s *Service) UpdateMedicalInfo(ctx context.Context, medID string, p *UpdatePayload) (*Record, error) {
	if err := checkClass(p.Class); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByMedID(ctx, medID)
	if err != nil {
		return nil, err
	}
	r := p.Apply(existing)
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	s.notify(ctx, ChangeUpdated, medID)
	return r, nil
}

func (s *Service) DeleteMedicalInfo(ctx context.Context, medID string) error {
	if err := s.repo.Delete(ctx, medID); err != nil {
		return err
	}
	s.notify(ctx, ChangeDeleted, medID)
	return nil
}

func (s *Service) ListMedicalInfo(ctx context.Context) ([]*Record, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Record{}
	}
	return items, nil
}
