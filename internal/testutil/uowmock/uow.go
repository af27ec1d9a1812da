package uowmock

import (
	"context"
	"errors"

	"gccp-api/internal/domain/contract"
	"gccp-api/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn         func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinContractTxFn func(ctx context.Context, id string, fn func(r uow.Repos, c *contract.Contract) error) error
}

// Passthrough runs callbacks directly against repos, loading the contract
// for WithinContractTx through GetByIDForUpdate.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error { return fn(repos) },
		WithinContractTxFn: func(ctx context.Context, id string, fn func(uow.Repos, *contract.Contract) error) error {
			c, err := repos.Contracts.GetByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			return fn(repos, c)
		},
	}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinContractTx(ctx context.Context, id string, fn func(r uow.Repos, c *contract.Contract) error) error {
	if m.WithinContractTxFn != nil {
		return m.WithinContractTxFn(ctx, id, fn)
	}
	return errUnimplemented
}
