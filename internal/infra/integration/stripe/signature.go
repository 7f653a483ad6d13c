package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance bounds how old a signed webhook payload may be.
const DefaultTolerance = 5 * time.Minute

var (
	ErrMissingSignature = errors.New("missing Stripe-Signature header")
	ErrBadSignature     = errors.New("webhook signature verification failed")
	ErrStaleSignature   = errors.New("webhook timestamp outside tolerance")
)

// VerifySignature checks a Stripe-Signature header ("t=...,v1=...") against
// the raw body. The signed payload is "<t>.<body>" HMAC-SHA256'd with the
// endpoint secret; the timestamp must be within tolerance of now.
func VerifySignature(body []byte, header, secret string, tolerance time.Duration) error {
	if header == "" {
		return ErrMissingSignature
	}

	var ts int64
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			parsed, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return ErrBadSignature
			}
			ts = parsed
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if ts == 0 || len(signatures) == 0 {
		return ErrBadSignature
	}

	age := time.Since(time.Unix(ts, 0))
	if age > tolerance || age < -tolerance {
		return ErrStaleSignature
	}

	expected := computeSignature(body, secret, ts)
	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrBadSignature
}

// SignPayload builds a valid Stripe-Signature header. Test helper.
func SignPayload(body []byte, secret string, at time.Time) string {
	ts := at.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, computeSignature(body, secret, ts))
}

func computeSignature(body []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
