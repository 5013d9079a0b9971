package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"salary-stream-loan/pkg/id"
)

const keyPrefix = "idem:ssl:"

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

// requestKey scopes a request id to one route and one caller, so two parties
// reusing an id never collide.
func requestKey(method, route, partyID, requestID string) string {
	return keyPrefix + strings.ToLower(method) + ":" + route + ":" + partyID + ":" + requestID
}

// validRequestID accepts a lowercase canonical UUID (v1 to v7) or a bare 32-hex id.
func validRequestID(s string) bool {
	if id.Valid(s) {
		return true
	}
	if len(s) != 36 || s != strings.ToLower(s) {
		return false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return u.Variant() == uuid.RFC4122 && u.Version() >= 1 && u.Version() <= 7
}

// parseRequestAt accepts epoch seconds, epoch milliseconds, or RFC3339 with an
// explicit zone. Naive local timestamps are rejected.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	// RFC3339Nano also parses plain RFC3339
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}

func withinSkew(t, now time.Time) bool {
	return !t.Before(now.Add(-maxClockSkew)) && !t.After(now.Add(maxClockSkew))
}
