package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"tourapi/internal/apperror"
	"tourapi/internal/config"
)

type fakeSessions struct {
	params *stripe.CheckoutSessionParams
	err    error
}

func (f *fakeSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
}

const secret = "whsec_test"

func newTestStripe(f *fakeSessions) *Stripe {
	return &Stripe{sessions: f, webhookSecret: secret, currency: "usd"}
}

func TestCreateCheckoutSession(t *testing.T) {
	f := &fakeSessions{}
	s := newTestStripe(f)

	sess, err := s.CreateCheckoutSession(context.Background(), CheckoutRequest{
		TourID:        "tour-1",
		TourName:      "The Forest Hiker",
		Summary:       "Breathtaking hike",
		ImageURL:      "https://example.com/img/tours/tour-1-cover.jpg",
		Price:         497.99,
		CustomerEmail: "jane@example.com",
		SuccessURL:    "https://example.com/my-tours?alert=booking",
		CancelURL:     "https://example.com/tour/the-forest-hiker",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", sess.ID)

	p := f.params
	require.NotNil(t, p)
	assert.Equal(t, "payment", *p.Mode)
	assert.Equal(t, []*string{stripe.String("card")}, p.PaymentMethodTypes)
	assert.Equal(t, "tour-1", *p.ClientReferenceID)
	assert.Equal(t, "jane@example.com", *p.CustomerEmail)
	assert.Equal(t, "https://example.com/my-tours?alert=booking", *p.SuccessURL)
	require.Len(t, p.LineItems, 1)
	item := p.LineItems[0]
	assert.Equal(t, int64(1), *item.Quantity)
	assert.Equal(t, int64(49799), *item.PriceData.UnitAmount)
	assert.Equal(t, "usd", *item.PriceData.Currency)
	assert.Equal(t, "The Forest Hiker Tour", *item.PriceData.ProductData.Name)
}

func TestCreateCheckoutSessionError(t *testing.T) {
	s := newTestStripe(&fakeSessions{err: errors.New("card declined")})
	_, err := s.CreateCheckoutSession(context.Background(), CheckoutRequest{Price: 1})
	assert.ErrorContains(t, err, "card declined")
}

func sign(t *testing.T, payload string) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

const completed = `{
  "id": "evt_1",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {"object": {
    "id": "cs_test_1",
    "object": "checkout.session",
    "client_reference_id": "tour-1",
    "customer_email": "jane@example.com",
    "amount_total": 49700
  }}
}`

func TestParseWebhookCheckoutCompleted(t *testing.T) {
	s := newTestStripe(&fakeSessions{})

	ev, err := s.ParseWebhook([]byte(completed), sign(t, completed))
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, ev.Type)
	require.NotNil(t, ev.Checkout)
	assert.Equal(t, "cs_test_1", ev.Checkout.SessionID)
	assert.Equal(t, "tour-1", ev.Checkout.TourID)
	assert.Equal(t, "jane@example.com", ev.Checkout.CustomerEmail)
	assert.Equal(t, 497.0, ev.Checkout.Price)
}

func TestParseWebhookOtherEvent(t *testing.T) {
	s := newTestStripe(&fakeSessions{})
	payload := `{"id":"evt_2","object":"event","type":"payment_intent.created","data":{"object":{}}}`

	ev, err := s.ParseWebhook([]byte(payload), sign(t, payload))
	require.NoError(t, err)
	assert.Equal(t, "payment_intent.created", ev.Type)
	assert.Nil(t, ev.Checkout)
}

func TestParseWebhookBadSignature(t *testing.T) {
	s := newTestStripe(&fakeSessions{})

	_, err := s.ParseWebhook([]byte(completed), "t=1,v1=deadbeef")
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Status)
	assert.Contains(t, appErr.Message, "Webhook error: ")
}

func TestNewStripe(t *testing.T) {
	s := NewStripe(config.StripeConfig{SecretKey: "sk_test", WebhookSecret: secret, Currency: "eur"})
	assert.NotNil(t, s.sessions)
	assert.Equal(t, "eur", s.currency)
}
