package medicalinfo

import "context"

// Store performs the network CRUD calls against the MedicalInfo resource.
// Every failure is reported as a *StoreError (see AsStoreError).
type Store interface {
	List(ctx context.Context) ([]*Record, error)
	Create(ctx context.Context, p *CreatePayload) error
	Update(ctx context.Context, id string, p *UpdatePayload) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Record, error)
}
