package rail

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
)

// StripeClient settles payments through Stripe PaymentIntents.
type StripeClient struct {
	paymentMethod string
	log           *logrus.Logger
}

func NewStripeClient(apiKey, paymentMethod string, log *logrus.Logger) *StripeClient {
	stripe.Key = apiKey
	if log == nil {
		log = logrus.New()
	}
	return &StripeClient{
		paymentMethod: paymentMethod,
		log:           log,
	}
}

func (c *StripeClient) SettlePayment(ctx context.Context, s Settlement) error {
	// Stripe wants the amount in the currency's minor unit.
	minorUnits := s.Amount.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(minorUnits),
		Currency:      stripe.String(strings.ToLower(s.Currency)),
		PaymentMethod: stripe.String(c.paymentMethod),
		Confirm:       stripe.Bool(true),
	}
	params.Context = ctx
	params.SetIdempotencyKey(s.Reference)
	params.AddMetadata("reference", s.Reference)

	intent, err := paymentintent.New(params)
	if err != nil {
		return fmt.Errorf("stripe settlement failed: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"reference": s.Reference,
		"intent_id": intent.ID,
		"status":    intent.Status,
	}).Info("settlement accepted by rail")
	return nil
}
