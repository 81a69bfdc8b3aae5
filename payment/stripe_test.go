package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

func sign(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestParseWebhook_CheckoutCompleted(t *testing.T) {
	s := NewStripe("sk_test", testSecret)
	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_1", "object": "checkout.session", "metadata": {"orderId": "ord-1", "restaurantId": "7"}}}
	}`)

	ev, err := s.ParseWebhook(payload, sign(payload, testSecret))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, EventCheckoutCompleted, ev.Type)
	assert.Equal(t, "cs_1", ev.SessionID)
	assert.Equal(t, "ord-1", ev.OrderID)
}

func TestParseWebhook_BadSignature(t *testing.T) {
	s := NewStripe("sk_test", testSecret)
	payload := []byte(`{"id": "evt_1", "object": "event", "type": "checkout.session.completed", "data": {"object": {}}}`)

	_, err := s.ParseWebhook(payload, sign(payload, "whsec_other"))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseWebhook_OtherEventsCarryNoOrder(t *testing.T) {
	s := NewStripe("sk_test", testSecret)
	payload := []byte(`{"id": "evt_2", "object": "event", "type": "charge.refunded", "data": {"object": {"id": "ch_1"}}}`)

	ev, err := s.ParseWebhook(payload, sign(payload, testSecret))
	require.NoError(t, err)
	assert.Equal(t, EventType("charge.refunded"), ev.Type)
	assert.Empty(t, ev.OrderID)
}
