package contract

import (
	"time"

	domain "gccp-api/internal/domain/contract"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02"

// Pointer fields distinguish "absent" from "zero" so the same input serves
// creation (everything required) and partial update (absent = unchanged).
type InstallmentInput struct {
	InstallmentNumber *int             `json:"installment_number" validate:"omitnil,gte=1"`
	Amount            *decimal.Decimal `json:"amount"             validate:"omitnil,gt=0,lt=100000000,dec2"`
	DueDate           *string          `json:"due_date"           validate:"omitnil,datetime=2006-01-02,notpast"`
}

type ContractInput struct {
	ID                *string            `json:"id"`
	IssueDate         *string            `json:"issue_date"          validate:"omitnil,datetime=2006-01-02"`
	BorrowerBirthDate *string            `json:"borrower_birth_date" validate:"omitnil,datetime=2006-01-02,adult"`
	DisbursedAmount   *decimal.Decimal   `json:"disbursed_amount"    validate:"omitnil,gt=0,lt=100000000,dec2"`
	DocumentNumber    *string            `json:"document_number"     validate:"omitnil,document"`
	Country           *string            `json:"country"             validate:"omitnil,notblank,max=20"`
	State             *string            `json:"state"               validate:"omitnil,notblank,max=20"`
	City              *string            `json:"city"                validate:"omitnil,notblank,max=20"`
	PhoneNumber       *string            `json:"phone_number"        validate:"omitnil,phone"`
	InterestRate      *decimal.Decimal   `json:"interest_rate"       validate:"omitnil,gt=0,lte=100,dec2"`
	Installments      []InstallmentInput `json:"installments"        validate:"omitempty,dive"`
}

type InstallmentDTO struct {
	InstallmentNumber int    `json:"installment_number"`
	Amount            string `json:"amount"`
	DueDate           string `json:"due_date"`
}

type ContractDTO struct {
	ID                string           `json:"id"`
	IssueDate         string           `json:"issue_date"`
	BorrowerBirthDate string           `json:"borrower_birth_date"`
	DisbursedAmount   string           `json:"disbursed_amount"`
	DocumentNumber    string           `json:"document_number"`
	Country           string           `json:"country"`
	State             string           `json:"state"`
	City              string           `json:"city"`
	PhoneNumber       string           `json:"phone_number"`
	InterestRate      string           `json:"interest_rate"`
	Installments      []InstallmentDTO `json:"installments"`
}

type SummaryDTO struct {
	TotalReceivable string `json:"total_receivable"`
	TotalDisbursed  string `json:"total_disbursed"`
	TotalContracts  int64  `json:"total_contracts"`
	AverageRate     string `json:"average_rate"`
}

type ListResult struct {
	Items []ContractDTO
	Total int64
}

func formatDate(d datatypes.Date) string { return time.Time(d).UTC().Format(dateLayout) }

// parseDate is only called on values that already passed the datetime rule.
func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func toDTO(c *domain.Contract) *ContractDTO {
	items := make([]InstallmentDTO, 0, len(c.Installments))
	for _, it := range c.Installments {
		items = append(items, InstallmentDTO{
			InstallmentNumber: it.InstallmentNumber,
			Amount:            it.Amount.StringFixed(2),
			DueDate:           formatDate(it.DueDate),
		})
	}
	return &ContractDTO{
		ID:                c.ID,
		IssueDate:         formatDate(c.IssueDate),
		BorrowerBirthDate: formatDate(c.BorrowerBirthDate),
		DisbursedAmount:   c.DisbursedAmount.StringFixed(2),
		DocumentNumber:    c.DocumentNumber,
		Country:           c.Country,
		State:             c.State,
		City:              c.City,
		PhoneNumber:       c.PhoneNumber,
		InterestRate:      c.InterestRate.StringFixed(2),
		Installments:      items,
	}
}
