package link

import (
	"crypto/rand"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	tokenBytes = 24
	DefaultTTL = 10 * time.Minute
)

var NowFunc = time.Now // mockable

// makeToken returns 48 hex characters of crypto-random data.
func makeToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// TTLFromMinutes parses a (possibly fractional) number of minutes.
// Blank, non-numeric and non-positive values fall back to DefaultTTL.
func TTLFromMinutes(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultTTL
	}
	mins, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(mins) || math.IsInf(mins, 0) || mins <= 0 {
		return DefaultTTL
	}
	return time.Duration(mins * float64(time.Minute))
}
