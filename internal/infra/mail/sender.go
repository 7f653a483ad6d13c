package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/quiprentals/lead-market/internal/infra/queue"
)

func NewEmailSender(host string, port int, user, password, from, supportTo string) *EmailSender {
	return &EmailSender{
		Host:      host,
		Port:      port,
		User:      user,
		Password:  password,
		From:      from,
		SupportTo: supportTo,
	}
}

var alertTemplate = template.Must(template.New("reconciliation").Parse(`A lead purchase needs manual follow-up.

Buyer {{.BuyerID}} paid for lead {{.LeadID}} but the lead was sold to another
buyer before the payment confirmation arrived.

  Intent:      {{.IntentID}}
  Transaction: {{.Transaction}}
  Amount:      ${{.AmountUSD}}
  Refund:      {{.RefundID}}
  Reason:      {{.Reason}}

The refund above has already been issued. Please confirm it with the buyer.
`))

// SendReconciliationAlert mails support about a refunded lost-race purchase.
func (s *EmailSender) SendReconciliationAlert(p queue.ReconciliationPayload, refundID string) error {
	data := reconciliationAlertData{
		LeadID:      p.LeadID,
		BuyerID:     p.BuyerID,
		IntentID:    p.IntentID,
		Transaction: p.GatewayTransactionID,
		RefundID:    refundID,
		AmountUSD:   fmt.Sprintf("%.2f", float64(p.AmountCents)/100.0),
		Reason:      p.Reason,
	}

	var body bytes.Buffer
	if err := alertTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render alert template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.SupportTo)
	m.SetHeader("Subject", fmt.Sprintf("Refund issued: lead %s (buyer %s)", p.LeadID, p.BuyerID))
	m.SetBody("text/plain", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send alert mail: %w", err)
	}
	return nil
}
