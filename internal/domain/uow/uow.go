package uow

import (
	"context"

	"gccp-api/internal/domain/contract"
)

type Repos struct {
	Contracts contract.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the contract row first, then pass it in (installments preloaded)
	WithinContractTx(ctx context.Context, id string, fn func(r Repos, c *contract.Contract) error) error
}
