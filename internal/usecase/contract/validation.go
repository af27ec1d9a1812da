package contract

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	domain "gccp-api/internal/domain/contract"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

var (
	reDocument = regexp.MustCompile(`^[0-9]{11}$`)
	rePhone    = regexp.MustCompile(`^[0-9]{10,11}$`)
)

// Borrowers must be adults, measured in 365.25-day years.
const (
	minBorrowerAge = 18
	daysPerYear    = 365.25
)

// ValidationError maps a field (json name, or "installments") to its messages.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Keys returns the failing fields in a stable order.
func (e *ValidationError) Keys() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, k := range e.Keys() {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	cv := &Validator{v: validator.New(), now: now}

	// report json names so errors line up with the payload
	cv.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// decimals are compared as numbers by gt/lte/lt
	cv.v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	// "" and whitespace-only strings fail, unlike required on a non-nil pointer
	_ = cv.v.RegisterValidation("notblank", validators.NotBlank)
	_ = cv.v.RegisterValidation("document", func(fl validator.FieldLevel) bool {
		return reDocument.MatchString(fl.Field().String())
	})
	_ = cv.v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return rePhone.MatchString(fl.Field().String())
	})
	// max 2 decimal places
	_ = cv.v.RegisterValidation("dec2", func(fl validator.FieldLevel) bool {
		s := strconv.FormatFloat(fl.Field().Float(), 'f', -1, 64)
		if i := strings.IndexByte(s, '.'); i >= 0 {
			return len(s)-i-1 <= 2
		}
		return true
	})
	_ = cv.v.RegisterValidation("adult", func(fl validator.FieldLevel) bool {
		birth, err := time.Parse(dateLayout, fl.Field().String())
		if err != nil {
			return true // datetime reports it
		}
		return ageInYears(birth, cv.today()) >= minBorrowerAge
	})
	_ = cv.v.RegisterValidation("notpast", func(fl validator.FieldLevel) bool {
		due, err := time.Parse(dateLayout, fl.Field().String())
		if err != nil {
			return true
		}
		return !due.Before(cv.today())
	})
	return cv
}

func (cv *Validator) today() time.Time { return time.Time(domain.Date(cv.now())) }

func ageInYears(birth, today time.Time) float64 {
	days := int(today.Sub(birth).Hours() / 24)
	return float64(days) / daysPerYear
}

// ValidateCreate checks a full payload: every field present, field rules,
// then the cross-field rules.
func (cv *Validator) ValidateCreate(in ContractInput) error {
	verr := &ValidationError{}
	cv.checkPresence(in, true, verr)
	cv.checkFields(in, verr)
	if len(verr.Fields) > 0 {
		return verr
	}
	cv.checkCrossFields(in, true, verr)
	return verr.orNil()
}

// ValidateUpdate checks only what the patch supplies, then evaluates the
// cross-field rules on the patch overlaid onto the stored contract. The
// overlaid input is returned for persisting.
func (cv *Validator) ValidateUpdate(stored *domain.Contract, patch ContractInput) (ContractInput, error) {
	verr := &ValidationError{}
	cv.checkPresence(patch, false, verr)
	cv.checkFields(patch, verr)
	if len(verr.Fields) > 0 {
		return ContractInput{}, verr
	}
	eff := Overlay(Snapshot(stored), patch)
	// stored installments are not re-checked against new scalar values
	supplied := patch.Installments != nil
	cv.checkCrossFields(eff, supplied, verr)
	if err := verr.orNil(); err != nil {
		return ContractInput{}, err
	}
	return eff, nil
}

func (cv *Validator) checkPresence(in ContractInput, whole bool, verr *ValidationError) {
	if whole {
		for _, f := range []struct {
			name    string
			present bool
		}{
			{"issue_date", in.IssueDate != nil},
			{"borrower_birth_date", in.BorrowerBirthDate != nil},
			{"disbursed_amount", in.DisbursedAmount != nil},
			{"document_number", in.DocumentNumber != nil},
			{"country", in.Country != nil},
			{"state", in.State != nil},
			{"city", in.City != nil},
			{"phone_number", in.PhoneNumber != nil},
			{"interest_rate", in.InterestRate != nil},
			{"installments", in.Installments != nil},
		} {
			if !f.present {
				verr.Add(f.name, "is required")
			}
		}
	}
	// supplied installments are new rows, so they must be complete
	for i, it := range in.Installments {
		prefix := fmt.Sprintf("installments[%d].", i)
		if it.InstallmentNumber == nil {
			verr.Add(prefix+"installment_number", "is required")
		}
		if it.Amount == nil {
			verr.Add(prefix+"amount", "is required")
		}
		if it.DueDate == nil {
			verr.Add(prefix+"due_date", "is required")
		}
	}
}

func (cv *Validator) checkFields(in ContractInput, verr *ValidationError) {
	err := cv.v.Struct(in)
	if err == nil {
		return
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		verr.Add("_", err.Error())
		return
	}
	for _, fe := range ve {
		verr.Add(fieldKey(fe.Namespace()), fieldMessage(fe))
	}
}

// checkCrossFields runs on a fully populated input. installments enables the
// list rules: presence, numbering and amount coverage.
func (cv *Validator) checkCrossFields(eff ContractInput, installments bool, verr *ValidationError) {
	if eff.IssueDate != nil && parseDate(*eff.IssueDate).After(cv.today()) {
		verr.Add("issue_date", "issue date cannot be in the future")
	}
	if !installments {
		return
	}
	if len(eff.Installments) == 0 {
		verr.Add("installments", "contract installments are required")
		return
	}
	numbers := make([]int, 0, len(eff.Installments))
	for _, it := range eff.Installments {
		numbers = append(numbers, *it.InstallmentNumber)
	}
	sort.Ints(numbers)
	for i, n := range numbers {
		if n != i+1 {
			verr.Add("installments", "installment numbers must be sequential starting at 1")
			break
		}
	}
	if eff.DisbursedAmount != nil {
		total := decimal.Zero
		for _, it := range eff.Installments {
			total = total.Add(*it.Amount)
		}
		if total.LessThan(*eff.DisbursedAmount) {
			verr.Add("installments", fmt.Sprintf(
				"sum of installments (%s) cannot be less than the disbursed amount (%s)",
				total.StringFixed(2), eff.DisbursedAmount.StringFixed(2)))
		}
	}
}

// "ContractInput.installments[0].amount" -> "installments[0].amount"
func fieldKey(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "document":
		return "document number must contain exactly 11 digits"
	case "phone":
		return "phone number must contain 10 or 11 digits"
	case "adult":
		return "borrower must be at least 18 years old"
	case "notpast":
		return "due date cannot be in the past"
	case "datetime":
		return "must be a date formatted as YYYY-MM-DD"
	case "dec2":
		return "must have at most 2 decimal places"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return fe.Tag() + " validation failed"
	}
}
