package contract

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	domain "gccp-api/internal/domain/contract"
	"gccp-api/internal/domain/uow"
	"gccp-api/pkg/id"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Usecase struct {
	repo        domain.Repository
	uow         uow.UnitOfWork
	log         *zap.Logger
	validator   *Validator
	now         func() time.Time
	newID       func() string
	strictDates bool
}

type Option func(*Usecase)

func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

func WithIDGenerator(fn func() string) Option { return func(u *Usecase) { u.newID = fn } }

// WithStrictDateFilter controls whether an unparseable issue_date filter is
// rejected (default) or ignored.
func WithStrictDateFilter(strict bool) Option { return func(u *Usecase) { u.strictDates = strict } }

// NewUsecase: pass the repo for reads and a UoW for write flows.
func NewUsecase(r domain.Repository, tx uow.UnitOfWork, log *zap.Logger, opts ...Option) *Usecase {
	u := &Usecase{
		repo:        r,
		uow:         tx,
		log:         log,
		now:         time.Now,
		newID:       id.NewContractID,
		strictDates: true,
	}
	for _, o := range opts {
		o(u)
	}
	if u.log == nil {
		u.log = zap.NewNop()
	}
	u.validator = NewValidator(u.now)
	return u
}

func (u *Usecase) List(ctx context.Context, params url.Values, page domain.Page) (*ListResult, error) {
	q, err := BuildFilter(params, u.strictDates)
	if err != nil {
		return nil, err
	}
	rows, total, err := u.repo.List(ctx, q.Filter, page)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	if total == 0 {
		return nil, emptyResult(q)
	}
	out := &ListResult{Items: make([]ContractDTO, 0, len(rows)), Total: total}
	for i := range rows {
		out.Items = append(out.Items, *toDTO(&rows[i]))
	}
	return out, nil
}

func (u *Usecase) Summary(ctx context.Context, params url.Values) (*SummaryDTO, error) {
	q, err := BuildFilter(params, u.strictDates)
	if err != nil {
		return nil, err
	}
	s, err := u.repo.Summarize(ctx, q.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSummary, err)
	}
	if s.TotalContracts == 0 {
		return nil, emptyResult(q)
	}
	return &SummaryDTO{
		TotalReceivable: s.TotalReceivable.StringFixed(2),
		TotalDisbursed:  s.TotalDisbursed.StringFixed(2),
		TotalContracts:  s.TotalContracts,
		AverageRate:     s.AverageRate.StringFixed(2),
	}, nil
}

func emptyResult(q FilterQuery) error {
	if q.Provided > 0 {
		return domain.ErrNoMatch
	}
	return domain.ErrNoContracts
}

// Create validates the full payload and stores the contract and its
// installments in one transaction. A client supplied id is ignored.
func (u *Usecase) Create(ctx context.Context, in ContractInput) (*ContractDTO, error) {
	in.ID = nil
	if err := u.validator.ValidateCreate(in); err != nil {
		return nil, err
	}

	c := &domain.Contract{ID: u.newID()}
	applyScalars(c, in)
	items := newInstallments(c.ID, in.Installments)

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Contracts.Create(ctx, c); err != nil {
			return err
		}
		return r.Contracts.CreateInstallments(ctx, items)
	})
	if err != nil {
		return nil, fmt.Errorf("create contract: %w", err)
	}
	c.Installments = items

	u.log.Info("contract created", zap.String("contract_id", c.ID), zap.Int("installments", len(items)))
	return toDTO(c), nil
}

// Update overlays the supplied fields onto the stored contract. Installments
// are replaced as a set, and only when supplied.
func (u *Usecase) Update(ctx context.Context, in ContractInput) (*ContractDTO, error) {
	if in.ID == nil || *in.ID == "" {
		return nil, domain.ErrMissingID
	}
	contractID := *in.ID

	var out *domain.Contract
	err := u.uow.WithinContractTx(ctx, contractID, func(r uow.Repos, c *domain.Contract) error {
		eff, err := u.validator.ValidateUpdate(c, in)
		if err != nil {
			return err
		}
		applyScalars(c, eff)
		if err := r.Contracts.Save(ctx, c); err != nil {
			return err
		}
		if in.Installments != nil {
			items := newInstallments(c.ID, in.Installments)
			if err := r.Contracts.DeleteInstallments(ctx, c.ID); err != nil {
				return err
			}
			if err := r.Contracts.CreateInstallments(ctx, items); err != nil {
				return err
			}
			c.Installments = items
		}
		out = c
		return nil
	})
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			return nil, verr
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("contract '%s' %w", contractID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update contract: %w", err)
	}

	u.log.Info("contract updated", zap.String("contract_id", contractID), zap.Bool("installments_replaced", in.Installments != nil))
	return toDTO(out), nil
}

func (u *Usecase) Delete(ctx context.Context, contractID string) error {
	err := u.repo.Delete(ctx, contractID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("contract '%s' %w", contractID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete contract: %w", err)
	}
	u.log.Info("contract deleted", zap.String("contract_id", contractID))
	return nil
}

func sortInstallments(items []domain.Installment) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].InstallmentNumber < items[j].InstallmentNumber
	})
}
