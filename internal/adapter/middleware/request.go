package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	errBadRequestID     = errors.New("invalid Ax-Request-Id format")
	errMissingRequestAt = errors.New("missing Ax-Request-At")
	errBadRequestAt     = errors.New("Ax-Request-At must be epoch (s/ms) or RFC3339 with timezone")
	errSkewedRequestAt  = errors.New("Ax-Request-At too skewed")
)

// requestStamp is what a client sends to make a contract write retryable.
type requestStamp struct {
	ID string
	At time.Time
}

// readStamp validates the idempotency headers against now. tracked is false
// when the request carries no Ax-Request-Id.
func readStamp(h http.Header, now time.Time) (s requestStamp, tracked bool, err error) {
	s.ID = strings.TrimSpace(h.Get(HeaderRequestID))
	if s.ID == "" {
		return s, false, nil
	}
	if !validRequestID(s.ID) {
		return s, true, errBadRequestID
	}
	if s.At, err = parseRequestAt(h.Get(HeaderRequestAt)); err != nil {
		return s, true, err
	}
	if d := s.At.Sub(now); d < -maxClockSkew || d > maxClockSkew {
		return s, true, errSkewedRequestAt
	}
	return s, true, nil
}

// key scopes the id to one route, so DELETE /contracts/a and
// DELETE /contracts/b never share an entry.
func (s requestStamp) key(method, path string) string {
	return "idemp:" + strings.ToLower(method) + ":" + path + ":" + s.ID
}

// validRequestID accepts 32 lowercase hex chars or a lowercase RFC 4122
// UUID of version 1 to 5.
func validRequestID(id string) bool {
	if id != strings.ToLower(id) {
		return false
	}
	switch len(id) {
	case 32:
		_, err := hex.DecodeString(id)
		return err == nil
	case 36:
		u, err := uuid.Parse(id)
		return err == nil && u.Variant() == uuid.RFC4122 && u.Version() >= 1 && u.Version() <= 5
	}
	return false
}

// parseRequestAt takes epoch seconds, epoch milliseconds, or RFC 3339 with a
// zone. Fractional seconds are allowed; zone-less local times are not.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errMissingRequestAt
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errBadRequestAt
	}
	return t.UTC(), nil
}

func bodySum(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
