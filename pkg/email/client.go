package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"
)

// Client handles transactional email delivery over SMTP.
type Client struct {
	host     string
	port     string
	username string
	password string
	from     string
	secure   bool
}

// NewClient creates a new email client.
func NewClient(host, port, username, password, from string, secure bool) *Client {
	return &Client{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		secure:   secure,
	}
}

// Options represents a single outgoing message.
type Options struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Send delivers an email with HTML content.
func (c *Client) Send(opts Options) error {
	message := c.buildMessage(opts.To, opts.Subject, c.wrapHTMLTemplate(opts.HTML), opts.Text)

	auth := smtp.PlainAuth("", c.username, c.password, c.host)
	addr := fmt.Sprintf("%s:%s", c.host, c.port)

	if err := smtp.SendMail(addr, auth, c.from, []string{opts.To}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendWelcome sends the account welcome email.
func (c *Client) SendWelcome(to, userName string) error {
	html := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your account is ready. Sign in, pick a course and start learning.</p>
	`, template.HTMLEscapeString(userName))

	return c.Send(Options{
		To:      to,
		Subject: "Welcome to the Academy",
		HTML:    html,
		Text:    fmt.Sprintf("Hi %s, your account is ready.", userName),
	})
}

// SendPasswordReset sends a password reset email with a tokenized link.
func (c *Client) SendPasswordReset(to, resetURL string) error {
	html := fmt.Sprintf(`
		<p>We received a request to reset your password.</p>
		<p><a href="%s" style="color: #2a7ae2;">Reset your password</a></p>
		<p>The link expires in one hour. If you did not request this, ignore this email.</p>
	`, resetURL)

	return c.Send(Options{
		To:      to,
		Subject: "Password reset",
		HTML:    html,
		Text:    "Reset your password: " + resetURL,
	})
}

// SendEnrollmentConfirmation notifies a student their enrollment is active.
func (c *Client) SendEnrollmentConfirmation(to, userName, schoolName string, expiresAt time.Time) error {
	html := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your enrollment in <strong>%s</strong> is active until %s.</p>
	`, template.HTMLEscapeString(userName), template.HTMLEscapeString(schoolName),
		expiresAt.Format("January 2, 2006"))

	return c.Send(Options{
		To:      to,
		Subject: "Enrollment confirmed",
		HTML:    html,
		Text:    fmt.Sprintf("Your enrollment in %s is active until %s.", schoolName, expiresAt.Format("2006-01-02")),
	})
}

func (c *Client) wrapHTMLTemplate(content string) string {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background: #f9f9f9;">
    <div style="padding: 32px;">
        <div style="max-width: 600px; margin: auto; background: #fff; border-radius: 8px; box-shadow: 0 2px 8px #eee; padding: 32px;">
            <div style="text-align: center; margin-bottom: 24px;">
                <h2 style="color: #2a7ae2; margin: 0;">Academy Notification</h2>
            </div>
            <div style="font-size: 16px; color: #333;">
                {{.Content}}
            </div>
            <div style="margin-top: 32px; text-align: center; color: #aaa; font-size: 12px;">
                &copy; {{.Year}} Academy. All rights reserved.
            </div>
        </div>
    </div>
</body>
</html>
`

	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	data := map[string]interface{}{
		"Content": template.HTML(content),
		"Year":    time.Now().Year(),
	}

	if err := t.Execute(&buf, data); err != nil {
		return content
	}

	return buf.String()
}

func (c *Client) buildMessage(to, subject, html, text string) string {
	from := c.from
	if from == "" {
		from = "noreply@example.com"
	}

	msg := fmt.Sprintf("From: %s\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	msg += "MIME-Version: 1.0\r\n"
	msg += "Content-Type: multipart/alternative; boundary=\"boundary42\"\r\n"
	msg += "\r\n"

	if text != "" {
		msg += "--boundary42\r\n"
		msg += "Content-Type: text/plain; charset=\"UTF-8\"\r\n"
		msg += "\r\n"
		msg += text + "\r\n"
	}

	msg += "--boundary42\r\n"
	msg += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	msg += "\r\n"
	msg += html + "\r\n"
	msg += "--boundary42--\r\n"

	return msg
}
