package contract

import (
	"encoding/json"
	"testing"
	"time"

	domain "gccp-api/internal/domain/contract"

	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2025, time.June, 1, 10, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

const validPayload = `{
	"issue_date": "2025-01-15",
	"borrower_birth_date": "1990-05-20",
	"disbursed_amount": 10000.00,
	"document_number": "12345678901",
	"country": "BR",
	"state": "SP",
	"city": "Sao Paulo",
	"phone_number": "11987654321",
	"interest_rate": 1.5,
	"installments": [
		{"installment_number": 1, "amount": 5000, "due_date": "2025-07-01"},
		{"installment_number": 2, "amount": 5000, "due_date": "2025-08-01"}
	]
}`

func decodeInput(t *testing.T, raw string) ContractInput {
	t.Helper()
	var in ContractInput
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		t.Fatalf("decode input: %v", err)
	}
	return in
}

func validInput(t *testing.T) ContractInput { return decodeInput(t, validPayload) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// storedContract mirrors validPayload as it would come back from the store.
func storedContract() *domain.Contract {
	return &domain.Contract{
		ID:                "aaaaaaaaaaaaaaaaaaaa",
		IssueDate:         domain.Date(day("2025-01-15")),
		BorrowerBirthDate: domain.Date(day("1990-05-20")),
		DisbursedAmount:   dec("10000.00"),
		DocumentNumber:    "12345678901",
		Country:           "BR",
		State:             "SP",
		City:              "Sao Paulo",
		PhoneNumber:       "11987654321",
		InterestRate:      dec("1.50"),
		Installments: []domain.Installment{
			{ID: 1, ContractID: "aaaaaaaaaaaaaaaaaaaa", InstallmentNumber: 1, Amount: dec("5000.00"), DueDate: domain.Date(day("2025-07-01"))},
			{ID: 2, ContractID: "aaaaaaaaaaaaaaaaaaaa", InstallmentNumber: 2, Amount: dec("5000.00"), DueDate: domain.Date(day("2025-08-01"))},
		},
	}
}

func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("want *ValidationError, got %T (%v)", err, err)
	}
	return verr.Fields
}

func hasMessage(fields map[string][]string, field, msg string) bool {
	for _, m := range fields[field] {
		if m == msg {
			return true
		}
	}
	return false
}
