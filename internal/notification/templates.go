package notification

import (
	"bytes"
	"fmt"
	"html/template"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

var (
	welcomeTmpl = template.Must(template.New("welcome").Parse(
		`<h1>Welcome, {{.Name}}!</h1>
<p>Thanks for creating an account. Your cart is ready whenever you are.</p>`))

	orderConfirmationTmpl = template.Must(template.New("orderConfirmation").Parse(
		`<h1>Order #{{.OrderID}} confirmed</h1>
<p>We received your payment and your order is now being processed.</p>
<table>
{{range .Items}}<tr><td>{{.ProductName}}</td><td>x{{.Quantity}}</td><td>{{.Price.StringFixed 2}}</td></tr>
{{end}}</table>
<p><strong>Total: {{.Total.StringFixed 2}}</strong></p>`))

	orderShippedTmpl = template.Must(template.New("orderShipped").Parse(
		`<h1>Order #{{.OrderID}} has shipped</h1>
{{if .TrackingNumber}}<p>Tracking number: {{.TrackingNumber}}</p>{{end}}`))

	contactSupportTmpl = template.Must(template.New("contactSupport").Parse(
		`<h2>New contact message</h2>
<p><strong>From:</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p>{{.Message}}</p>`))

	contactReceiptTmpl = template.Must(template.New("contactReceipt").Parse(
		`<p>Hi {{.Name}},</p>
<p>We received your message and will get back to you shortly.</p>`))
)

func Welcome(name string) (string, string) {
	return "Welcome to our store", render(welcomeTmpl, struct{ Name string }{name})
}

func OrderConfirmation(orderID int64, total decimal.Decimal, items []model.OrderItem) (string, string) {
	subject := fmt.Sprintf("Order Confirmation #%d", orderID)
	return subject, render(orderConfirmationTmpl, struct {
		OrderID int64
		Total   decimal.Decimal
		Items   []model.OrderItem
	}{orderID, total, items})
}

func OrderShipped(orderID int64, trackingNumber string) (string, string) {
	subject := fmt.Sprintf("Your order #%d has shipped", orderID)
	return subject, render(orderShippedTmpl, struct {
		OrderID        int64
		TrackingNumber string
	}{orderID, trackingNumber})
}

func ContactSupport(name, email, subject, message string) (string, string) {
	if subject == "" {
		subject = "General inquiry"
	}
	return "Contact form: " + subject, render(contactSupportTmpl, struct {
		Name, Email, Subject, Message string
	}{name, email, subject, message})
}

func ContactReceipt(name string) (string, string) {
	return "We received your message", render(contactReceiptTmpl, struct{ Name string }{name})
}

func render(t *template.Template, data interface{}) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		// テンプレートは固定なので実行時エラーは起きない想定
		return ""
	}
	return buf.String()
}
