package mysql

import (
	"context"

	"gccp-api/internal/domain/contract"
	"gccp-api/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(uow.Repos{Contracts: &ContractRepository{db: tx}})
	})
}

func (u *GormUoW) WithinContractTx(ctx context.Context, id string, fn func(r uow.Repos, c *contract.Contract) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := uow.Repos{Contracts: &ContractRepository{db: tx}}
		// lock the contract row up-front so concurrent updates serialize
		c, err := r.Contracts.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		return fn(r, c)
	})
}

var _ uow.UnitOfWork = (*GormUoW)(nil)
