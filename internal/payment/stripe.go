// Package payment adapts the Stripe client to the processor interface the
// application layer consumes.
package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/example/serenity-bookings/internal/application"
)

// StripeProcessor drives payment intents through the Stripe API.
type StripeProcessor struct {
	sc *client.API
}

// NewStripeProcessor constructs a processor bound to the given secret key.
func NewStripeProcessor(secretKey string) *StripeProcessor {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeProcessor{sc: sc}
}

// CreateIntent opens a payment intent for the amount in minor units. The
// booking id travels in the intent metadata so webhooks and dashboards can
// correlate charges back to bookings.
func (p *StripeProcessor) CreateIntent(ctx context.Context, amountMinor int64, currency, bookingID string) (application.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("booking_id", bookingID)

	intent, err := p.sc.PaymentIntents.New(params)
	if err != nil {
		return application.PaymentIntent{}, fmt.Errorf("stripe: create payment intent: %w", err)
	}

	return application.PaymentIntent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// IntentStatus fetches the current processor-side status of an intent.
func (p *StripeProcessor) IntentStatus(ctx context.Context, intentID string) (string, error) {
	params := &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}}

	intent, err := p.sc.PaymentIntents.Get(intentID, params)
	if err != nil {
		return "", fmt.Errorf("stripe: fetch payment intent: %w", err)
	}

	return string(intent.Status), nil
}
