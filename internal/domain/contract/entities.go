package contract

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Table: contracts
type Contract struct {
	// Public identifier (20-char lowercase hex)
	ID                string          `gorm:"column:id;primaryKey;size:20"`
	IssueDate         datatypes.Date  `gorm:"column:issue_date;type:date;not null;index:idx_contracts_issue_date"`
	BorrowerBirthDate datatypes.Date  `gorm:"column:borrower_birth_date;type:date;not null"`
	DisbursedAmount   decimal.Decimal `gorm:"column:disbursed_amount;type:decimal(10,2);not null"`
	DocumentNumber    string          `gorm:"column:document_number;size:11;not null;index:idx_contracts_document_number"`
	Country           string          `gorm:"column:country;size:20;not null"`
	State             string          `gorm:"column:state;size:20;not null;index:idx_contracts_state"`
	City              string          `gorm:"column:city;size:20;not null"`
	PhoneNumber       string          `gorm:"column:phone_number;size:20;not null"`
	InterestRate      decimal.Decimal `gorm:"column:interest_rate;type:decimal(5,2);not null"`
	Installments      []Installment   `gorm:"foreignKey:ContractID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Contract) TableName() string { return "contracts" }

// Table: installments (rows never outlive their contract)
type Installment struct {
	ID                uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	ContractID        string          `gorm:"column:contract_id;size:20;not null;index:idx_installments_contract"`
	InstallmentNumber int             `gorm:"column:installment_number;not null"`
	Amount            decimal.Decimal `gorm:"column:amount;type:decimal(10,2);not null"`
	DueDate           datatypes.Date  `gorm:"column:due_date;type:date;not null"`
}

func (Installment) TableName() string { return "installments" }

// Summary is the aggregate over a filtered contract set.
type Summary struct {
	TotalReceivable decimal.Decimal
	TotalDisbursed  decimal.Decimal
	TotalContracts  int64
	AverageRate     decimal.Decimal
}

// Date builds a UTC calendar date, the only form dates are stored in.
func Date(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
