package lib

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

type CheckoutInput struct {
	Title    string
	Amount   float64
	Currency string
	Metadata map[string]string
}

// CreateRentCheckout opens a hosted checkout session for a one-off rent
// charge and returns its URL and id.
func CreateRentCheckout(input *CheckoutInput) (*string, *string, error) {
	sc := GetStripeClient()
	successUrl := fmt.Sprintf("%s/checkout/callback/success", os.Getenv("APP_HOST"))
	piParams := &stripe.CheckoutSessionCreatePaymentIntentDataParams{}
	for k, v := range input.Metadata {
		piParams.AddMetadata(k, v)
	}
	createParams := stripe.CheckoutSessionCreateParams{
		SuccessURL:        stripe.String(successUrl),
		UIMode:            stripe.String("hosted"),
		Mode:              stripe.String("payment"),
		PaymentIntentData: piParams,
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String(input.Currency),
					UnitAmount: stripe.Int64(int64(input.Amount * 100)),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(input.Title),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: input.Metadata,
	}
	checkoutSession, err := sc.V1CheckoutSessions.Create(context.Background(), &createParams)
	if err != nil {
		log.Printf("CreateRentCheckout failed: %s\n", err.Error())
		return nil, nil, err
	}
	log.Printf("CheckoutSessionID: %s\n", checkoutSession.ID)
	return &checkoutSession.URL, &checkoutSession.ID, nil
}
