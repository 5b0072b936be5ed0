package domain

// CheckoutRequest is the body of POST /api/checkout.
type CheckoutRequest struct {
	PriceID string `json:"priceId" validate:"required,max=255,printascii"`
}

// CheckoutResponse is returned when a session was created.
type CheckoutResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
}

// CheckoutSessionInput carries what the payments platform needs to open a
// hosted checkout for a single unit of one price.
type CheckoutSessionInput struct {
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is a created hosted checkout.
type CheckoutSession struct {
	ID  string
	URL string
}

// PurchaseSummary is what the success page shows for a completed session.
type PurchaseSummary struct {
	SessionID    string   `json:"sessionId"`
	CustomerName string   `json:"customerName"`
	ProductNames []string `json:"productNames"`
	Images       []string `json:"images"`
}

// CheckoutFailureAlert is shown to the buyer when a checkout session could
// not be opened.
const CheckoutFailureAlert = "Falha ao redirecionar para o checkout!"
