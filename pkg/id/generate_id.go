package id

import (
	"strings"

	"github.com/google/uuid"
)

// ContractIDLen is the width of the contracts.id column.
const ContractIDLen = 20

// NewContractID returns exactly 20 lowercase hex characters taken from a
// random (v4) UUID.
func NewContractID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:ContractIDLen]
}
