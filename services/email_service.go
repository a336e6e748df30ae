package services

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"
	"time"

	"backend/models"

	"golang.org/x/net/html"
)

// EmailService sends operational emails over SMTP.
type EmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewEmailService reads the SMTP configuration from the environment.
func NewEmailService() *EmailService {
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return &EmailService{
		host:     os.Getenv("SMTP_HOST"),
		port:     port,
		username: os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
	}
}

// convertHTMLToText flattens an HTML body to plain text for the email
// fallback part.
func convertHTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var text strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "table", "tr":
				text.WriteString("\n")
			case "li":
				text.WriteString("- ")
			case "td", "th":
				text.WriteString(" | ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extractText(child)
		}
	}
	extractText(doc)

	result := strings.ReplaceAll(text.String(), "\n\n\n", "\n\n")
	return strings.TrimSpace(result)
}

// renderTemplate substitutes {{key}} placeholders.
func renderTemplate(templateStr string, variables map[string]string) string {
	result := templateStr
	for key, value := range variables {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

const rfqEmailTemplate = `<p>Dear {{supplier_name}},</p>
<p>You are invited to quote on {{rfq_number}} for project {{project_name}}.</p>
<p>The request covers {{item_count}} line item(s). Quotes are due by {{due_date}}.</p>
<p>Submit your quote through the supplier portal:</p>
<p>{{portal_link}}</p>
<p>Regards,<br>FiberOps Procurement</p>`

// SendRFQEmail mails the supplier their portal link for a new RFQ.
func (es *EmailService) SendRFQEmail(supplier models.Supplier, rfq models.RFQ) error {
	if supplier.Email == "" {
		return fmt.Errorf("supplier %d has no email address", supplier.ID)
	}

	body := renderTemplate(rfqEmailTemplate, map[string]string{
		"supplier_name": supplier.Name,
		"rfq_number":    rfq.RFQNumber,
		"project_name":  rfq.ProjectName,
		"item_count":    fmt.Sprintf("%d", len(rfq.Items)),
		"due_date":      rfq.DueDate.Format("02 Jan 2006"),
		"portal_link":   rfq.SupplierPortalLink,
	})

	subject := fmt.Sprintf("Request for Quotation %s", rfq.RFQNumber)
	return es.sendEmail(supplier.Email, subject, convertHTMLToText(body), nil, nil)
}

const passwordResetTemplate = `<p>Hi {{user_name}},</p>
<p>A password reset was requested for your account. Use the link below to choose a new password:</p>
<p>{{reset_link}}</p>
<p>The link expires at {{expires}}.</p>
<p>If you did not request this, contact your administrator.</p>`

// SendPasswordResetEmail mails the user a reset link.
func (es *EmailService) SendPasswordResetEmail(email, userName, resetLink string, expires time.Time) error {
	body := renderTemplate(passwordResetTemplate, map[string]string{
		"user_name":  userName,
		"reset_link": resetLink,
		"expires":    expires.Format("15:04 on 02 Jan 2006"),
	})
	return es.sendEmail(email, "Reset your password", convertHTMLToText(body), nil, nil)
}

// sendEmail delivers one message over SMTP with optional CC and BCC.
func (es *EmailService) sendEmail(to, subject, body string, cc, bcc []string) error {
	if es.host == "" {
		return fmt.Errorf("SMTP_HOST is not configured")
	}

	auth := smtp.PlainAuth("", es.username, es.password, es.host)

	toList := []string{to}
	toList = append(toList, cc...)
	toList = append(toList, bcc...)

	headers := []string{
		"From: " + es.from,
		"To: " + to,
	}
	if len(cc) > 0 {
		headers = append(headers, "Cc: "+strings.Join(cc, ", "))
	}
	headers = append(headers,
		"Subject: "+subject,
		"",
		body,
	)
	msg := []byte(strings.Join(headers, "\r\n") + "\r\n")

	return smtp.SendMail(es.host+":"+es.port, auth, es.from, toList, msg)
}
