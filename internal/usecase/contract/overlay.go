package contract

import (
	domain "gccp-api/internal/domain/contract"
)

// Snapshot renders a stored contract as a fully populated input.
func Snapshot(c *domain.Contract) ContractInput {
	id := c.ID
	issue := formatDate(c.IssueDate)
	birth := formatDate(c.BorrowerBirthDate)
	disbursed := c.DisbursedAmount
	doc, country, state, city, phone := c.DocumentNumber, c.Country, c.State, c.City, c.PhoneNumber
	rate := c.InterestRate

	items := make([]InstallmentInput, 0, len(c.Installments))
	for _, it := range c.Installments {
		n, amount, due := it.InstallmentNumber, it.Amount, formatDate(it.DueDate)
		items = append(items, InstallmentInput{InstallmentNumber: &n, Amount: &amount, DueDate: &due})
	}
	return ContractInput{
		ID:                &id,
		IssueDate:         &issue,
		BorrowerBirthDate: &birth,
		DisbursedAmount:   &disbursed,
		DocumentNumber:    &doc,
		Country:           &country,
		State:             &state,
		City:              &city,
		PhoneNumber:       &phone,
		InterestRate:      &rate,
		Installments:      items,
	}
}

// Overlay returns base with every field supplied in patch replacing it.
// The installment list is replaced as a whole, never merged.
func Overlay(base, patch ContractInput) ContractInput {
	out := base
	if patch.IssueDate != nil {
		out.IssueDate = patch.IssueDate
	}
	if patch.BorrowerBirthDate != nil {
		out.BorrowerBirthDate = patch.BorrowerBirthDate
	}
	if patch.DisbursedAmount != nil {
		out.DisbursedAmount = patch.DisbursedAmount
	}
	if patch.DocumentNumber != nil {
		out.DocumentNumber = patch.DocumentNumber
	}
	if patch.Country != nil {
		out.Country = patch.Country
	}
	if patch.State != nil {
		out.State = patch.State
	}
	if patch.City != nil {
		out.City = patch.City
	}
	if patch.PhoneNumber != nil {
		out.PhoneNumber = patch.PhoneNumber
	}
	if patch.InterestRate != nil {
		out.InterestRate = patch.InterestRate
	}
	if patch.Installments != nil {
		out.Installments = patch.Installments
	}
	return out
}

// applyScalars copies the contract-level fields of a validated, fully
// populated input onto c.
func applyScalars(c *domain.Contract, in ContractInput) {
	c.IssueDate = domain.Date(parseDate(*in.IssueDate))
	c.BorrowerBirthDate = domain.Date(parseDate(*in.BorrowerBirthDate))
	c.DisbursedAmount = *in.DisbursedAmount
	c.DocumentNumber = *in.DocumentNumber
	c.Country = *in.Country
	c.State = *in.State
	c.City = *in.City
	c.PhoneNumber = *in.PhoneNumber
	c.InterestRate = *in.InterestRate
}

func newInstallments(contractID string, items []InstallmentInput) []domain.Installment {
	out := make([]domain.Installment, 0, len(items))
	for _, it := range items {
		out = append(out, domain.Installment{
			ContractID:        contractID,
			InstallmentNumber: *it.InstallmentNumber,
			Amount:            *it.Amount,
			DueDate:           domain.Date(parseDate(*it.DueDate)),
		})
	}
	sortInstallments(out)
	return out
}
