package contract

import "context"

type Repository interface {
	// Create inserts the contract row only; installments go through CreateInstallments.
	Create(ctx context.Context, c *Contract) error
	CreateInstallments(ctx context.Context, items []Installment) error
	DeleteInstallments(ctx context.Context, contractID string) error

	// Get by public id, installments preloaded in number order
	GetByID(ctx context.Context, id string) (*Contract, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Contract, error)

	// Save persists scalar fields, never associations
	Save(ctx context.Context, c *Contract) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, f Filter, p Page) ([]Contract, int64, error)
	Summarize(ctx context.Context, f Filter) (*Summary, error)
}
