package mysql

import (
	"context"

	contractDomain "gccp-api/internal/domain/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContractRepository struct{ db *gorm.DB }

func NewContractRepository(db *gorm.DB) *ContractRepository { return &ContractRepository{db: db} }

// Tx runs fn in a db transaction, passing a repo bound to the tx
func (r *ContractRepository) Tx(ctx context.Context, fn func(repo contractDomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ContractRepository{db: tx})
	})
}

func (r *ContractRepository) Create(ctx context.Context, c *contractDomain.Contract) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *ContractRepository) CreateInstallments(ctx context.Context, items []contractDomain.Installment) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *ContractRepository) DeleteInstallments(ctx context.Context, contractID string) error {
	return r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Delete(&contractDomain.Installment{}).Error
}

func (r *ContractRepository) Save(ctx context.Context, c *contractDomain.Contract) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error
}

func (r *ContractRepository) GetByID(ctx context.Context, id string) (*contractDomain.Contract, error) {
	var out contractDomain.Contract
	res := r.db.WithContext(ctx).
		Preload("Installments", byNumber).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

// GetByIDForUpdate locks the contract row (no-op on SQLite).
func (r *ContractRepository) GetByIDForUpdate(ctx context.Context, id string) (*contractDomain.Contract, error) {
	var out contractDomain.Contract
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Installments", byNumber).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

// Delete removes the contract and its installments together. The FK cascade
// covers rows written by other clients.
func (r *ContractRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", id).Delete(&contractDomain.Installment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&contractDomain.Contract{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *ContractRepository) List(ctx context.Context, f contractDomain.Filter, p contractDomain.Page) ([]contractDomain.Contract, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&contractDomain.Contract{}).
		Scopes(filtered(f)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, nil
	}

	var out []contractDomain.Contract
	err := r.db.WithContext(ctx).
		Scopes(filtered(f), paginate(p)).
		Preload("Installments", byNumber).
		Order("created_at, id").
		Find(&out).Error
	return out, total, err
}

func (r *ContractRepository) Summarize(ctx context.Context, f contractDomain.Filter) (*contractDomain.Summary, error) {
	var out contractDomain.Summary
	err := r.db.WithContext(ctx).Model(&contractDomain.Contract{}).
		Scopes(filtered(f)).
		Select("COUNT(*), COALESCE(SUM(disbursed_amount), 0), COALESCE(AVG(interest_rate), 0)").
		Row().
		Scan(&out.TotalContracts, &out.TotalDisbursed, &out.AverageRate)
	if err != nil {
		return nil, err
	}

	ids := r.db.Model(&contractDomain.Contract{}).Scopes(filtered(f)).Select("id")
	err = r.db.WithContext(ctx).Model(&contractDomain.Installment{}).
		Where("contract_id IN (?)", ids).
		Select("COALESCE(SUM(amount), 0)").
		Row().
		Scan(&out.TotalReceivable)
	if err != nil {
		return nil, err
	}

	out.TotalDisbursed = out.TotalDisbursed.Round(2)
	out.TotalReceivable = out.TotalReceivable.Round(2)
	out.AverageRate = out.AverageRate.Round(2)
	return &out, nil
}

// ---- scopes ----

func filtered(f contractDomain.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.ID != "" {
			db = db.Where("id = ?", f.ID)
		}
		if f.DocumentNumber != "" {
			db = db.Where("document_number = ?", f.DocumentNumber)
		}
		if f.State != "" {
			db = db.Where("state = ?", f.State)
		}
		// half-open [From, To) on the stored DATE
		if f.IssueDate != nil {
			db = db.Where("issue_date >= ? AND issue_date < ?",
				contractDomain.Date(f.IssueDate.From), contractDomain.Date(f.IssueDate.To))
		}
		return db
	}
}

func paginate(p contractDomain.Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.Limit <= 0 {
			return db
		}
		return db.Offset(p.Offset).Limit(p.Limit)
	}
}

func byNumber(db *gorm.DB) *gorm.DB { return db.Order("installment_number") }

var _ contractDomain.Repository = (*ContractRepository)(nil)
