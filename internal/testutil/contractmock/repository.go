package contractmock

import (
	"context"

	domain "gccp-api/internal/domain/contract"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to no-op success; reads default to context.Canceled.
type Repo struct {
	CreateFn             func(ctx context.Context, c *domain.Contract) error
	CreateInstallmentsFn func(ctx context.Context, items []domain.Installment) error
	DeleteInstallmentsFn func(ctx context.Context, contractID string) error
	GetByIDFn            func(ctx context.Context, id string) (*domain.Contract, error)
	GetByIDForUpdateFn   func(ctx context.Context, id string) (*domain.Contract, error)
	SaveFn               func(ctx context.Context, c *domain.Contract) error
	DeleteFn             func(ctx context.Context, id string) error
	ListFn               func(ctx context.Context, f domain.Filter, p domain.Page) ([]domain.Contract, int64, error)
	SummarizeFn          func(ctx context.Context, f domain.Filter) (*domain.Summary, error)
}

func (m *Repo) Create(ctx context.Context, c *domain.Contract) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *Repo) CreateInstallments(ctx context.Context, items []domain.Installment) error {
	if m.CreateInstallmentsFn != nil {
		return m.CreateInstallmentsFn(ctx, items)
	}
	return nil
}

func (m *Repo) DeleteInstallments(ctx context.Context, contractID string) error {
	if m.DeleteInstallmentsFn != nil {
		return m.DeleteInstallmentsFn(ctx, contractID)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.Contract, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Contract, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, c *domain.Contract) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, c)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *Repo) List(ctx context.Context, f domain.Filter, p domain.Page) ([]domain.Contract, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f, p)
	}
	return nil, 0, context.Canceled
}

func (m *Repo) Summarize(ctx context.Context, f domain.Filter) (*domain.Summary, error) {
	if m.SummarizeFn != nil {
		return m.SummarizeFn(ctx, f)
	}
	return nil, context.Canceled
}
