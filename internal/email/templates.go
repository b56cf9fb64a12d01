package email

import (
	"fmt"
	"strings"

	"github.com/example/stripe-payments/internal/domain/order"
)

// FormatAmount renders an integer cent amount as "12.34 USD".
func FormatAmount(cents int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(cents)/100, strings.ToUpper(currency))
}

// BuildReceiptBody renders the customer confirmation email.
func BuildReceiptBody(o *order.Order) string {
	var b strings.Builder

	b.WriteString(`<html><body style="font-family: Arial, sans-serif; color: #333;">`)
	b.WriteString(`<h2>Thank you for your order!</h2>`)
	if o.FirstName != "" {
		b.WriteString(fmt.Sprintf(`<p>Hi %s,</p>`, o.FirstName))
	}
	b.WriteString(`<p>We have received your payment. Here is a summary of your order:</p>`)
	b.WriteString(`<table style="border-collapse: collapse; width: 100%;">`)
	writeRow(&b, "Order Number", o.Number)
	writeRow(&b, "Amount", FormatAmount(o.TotalPrice, o.Currency))
	writeRow(&b, "Quantity", fmt.Sprintf("%d", o.Quantity))
	if o.Shipping > 0 {
		writeRow(&b, "Shipping", FormatAmount(o.Shipping, o.Currency))
	}
	if o.Tax > 0 {
		writeRow(&b, "Tax", FormatAmount(o.Tax, o.Currency))
	}
	if o.Discount > 0 {
		writeRow(&b, "Discount", FormatAmount(o.Discount, o.Currency))
	}
	writeRow(&b, "Date", o.DateOrdered.Format("Jan 2, 2006 15:04 MST"))
	b.WriteString(`</table>`)

	if len(o.Variants) > 0 {
		b.WriteString(`<h3>Details</h3><table style="border-collapse: collapse; width: 100%;">`)
		for name, value := range o.Variants {
			writeRow(&b, name, value)
		}
		b.WriteString(`</table>`)
	}

	if o.Address.Street != "" || o.Address.City != "" {
		b.WriteString(`<h3>Shipping Address</h3>`)
		b.WriteString(fmt.Sprintf(`<p>%s</p>`, formatAddress(o.Address)))
	}

	b.WriteString(`<p>If you have any questions, just reply to this email.</p>`)
	b.WriteString(`</body></html>`)
	return b.String()
}

// BuildAdminAlertBody renders the payment alert sent to the admin recipients.
func BuildAdminAlertBody(o *order.Order) string {
	var b strings.Builder

	b.WriteString(`<html><body style="font-family: Arial, sans-serif; color: #333;">`)
	b.WriteString(`<h2>Congratulations! You have received a payment.</h2>`)
	b.WriteString(`<table style="border-collapse: collapse; width: 100%;">`)
	writeRow(&b, "Order Number", o.Number)
	writeRow(&b, "Customer", o.Email)
	writeRow(&b, "Amount", FormatAmount(o.TotalPrice, o.Currency))
	writeRow(&b, "Quantity", fmt.Sprintf("%d", o.Quantity))
	writeRow(&b, "Transaction", o.StripeTransactionID)
	if o.IsSubscription {
		writeRow(&b, "Type", "Subscription")
	}
	if o.TestMode {
		writeRow(&b, "Mode", "Test")
	}
	writeRow(&b, "Date", o.DateOrdered.Format("Jan 2, 2006 15:04 MST"))
	b.WriteString(`</table>`)

	if o.Message != "" {
		b.WriteString(fmt.Sprintf(`<h3>Customer Message</h3><p>%s</p>`, o.Message))
	}

	b.WriteString(`</body></html>`)
	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(fmt.Sprintf(
		`<tr><td style="padding: 6px; border: 1px solid #ddd; font-weight: bold;">%s</td>`+
			`<td style="padding: 6px; border: 1px solid #ddd;">%s</td></tr>`,
		label, value))
}

func formatAddress(a order.Address) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.City, a.State, a.Zip, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
