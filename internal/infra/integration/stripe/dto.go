package stripe

type CreateIntentInput struct {
	AmountCents int64
	LeadID      string
	BuyerID     string
}

type IntentOutput struct {
	ID           string
	ClientSecret string
	Status       string
}

// paymentIntentResponse mirrors the fields we read from
// /v1/payment_intents responses.
type paymentIntentResponse struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"`
	Metadata     map[string]string `json:"metadata"`
}

type refundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Event is the decoded webhook envelope.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Amount   int64             `json:"amount"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

const EventPaymentIntentSucceeded = "payment_intent.succeeded"
