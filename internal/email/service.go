package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/example/stripe-payments/internal/domain/order"
)

// Service sends payment notification emails via SMTP.
type Service struct {
	host    string
	port    string
	from    string
	replyTo string
	admins  []string
}

// NewService creates a new email service. admins receives the payment alert
// sent on every completed order.
func NewService(host, port, from, replyTo string, admins []string) *Service {
	return &Service{
		host:    host,
		port:    port,
		from:    from,
		replyTo: replyTo,
		admins:  admins,
	}
}

// SendReceipt sends the customer confirmation for a completed payment.
func (s *Service) SendReceipt(to string, o *order.Order) error {
	subject := fmt.Sprintf("Thank you! Your order number is: %s", o.Number)
	body := BuildReceiptBody(o)
	return s.send([]string{to}, subject, body)
}

// SendAdminAlert notifies the configured admin recipients about a payment.
func (s *Service) SendAdminAlert(o *order.Order) error {
	if len(s.admins) == 0 {
		return nil
	}
	subject := fmt.Sprintf("You have received a payment: %s %s",
		FormatAmount(o.TotalPrice, o.Currency), o.Number)
	body := BuildAdminAlertBody(o)
	return s.send(s.admins, subject, body)
}

func (s *Service) send(to []string, subject, body string) error {
	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n",
		s.from, strings.Join(to, ", "), subject)
	if s.replyTo != "" {
		headers += fmt.Sprintf("Reply-To: %s\r\n", s.replyTo)
	}
	msg := headers + "MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n" + body
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, to, []byte(msg))
}
