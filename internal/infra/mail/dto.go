package mail

type EmailSender struct {
	Host      string
	Port      int
	User      string
	Password  string
	From      string
	SupportTo string
}

type reconciliationAlertData struct {
	LeadID      string
	BuyerID     string
	IntentID    string
	Transaction string
	RefundID    string
	AmountUSD   string
	Reason      string
}
