package stripe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "whsec_test"

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	t.Run("valid signature passes", func(t *testing.T) {
		header := SignPayload(body, testSecret, time.Now())
		assert.NoError(t, VerifySignature(body, header, testSecret, DefaultTolerance))
	})

	t.Run("missing header", func(t *testing.T) {
		err := VerifySignature(body, "", testSecret, DefaultTolerance)
		assert.ErrorIs(t, err, ErrMissingSignature)
	})

	t.Run("wrong secret", func(t *testing.T) {
		header := SignPayload(body, "whsec_other", time.Now())
		err := VerifySignature(body, header, testSecret, DefaultTolerance)
		assert.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("tampered body", func(t *testing.T) {
		header := SignPayload(body, testSecret, time.Now())
		tampered := []byte(`{"id":"evt_2","type":"payment_intent.succeeded"}`)
		err := VerifySignature(tampered, header, testSecret, DefaultTolerance)
		assert.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		header := SignPayload(body, testSecret, time.Now().Add(-10*time.Minute))
		err := VerifySignature(body, header, testSecret, DefaultTolerance)
		assert.ErrorIs(t, err, ErrStaleSignature)
	})

	t.Run("garbage header", func(t *testing.T) {
		err := VerifySignature(body, "t=abc,v1=", testSecret, DefaultTolerance)
		assert.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("second v1 entry may match", func(t *testing.T) {
		header := SignPayload(body, testSecret, time.Now()) + ",v1=deadbeef"
		assert.NoError(t, VerifySignature(body, header, testSecret, DefaultTolerance))
	})
}
