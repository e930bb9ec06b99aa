package utils

import (
	"fmt"
	"log"

	"nwd/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendCertificateIssuedEmail notifies a student that their diploma is
// available. Email failures are logged, never fatal: issuance already
// happened and must not be rolled back over a notification.
func SendCertificateIssuedEmail(toName, toEmail, certificateHandle, courseTitle string) error {
	if config.AppConfig == nil || config.AppConfig.SendGridAPIKey == "" {
		log.Printf("Skipping certificate email to %s: SendGrid not configured", toEmail)
		return nil
	}

	from := mail.NewEmail("Nationaal Watersportdiploma", config.AppConfig.EmailSender)
	to := mail.NewEmail(toName, toEmail)
	subject := "Je diploma is beschikbaar"

	plain := fmt.Sprintf("Gefeliciteerd! Je diploma voor %s is uitgegeven. Diplomanummer: %s", courseTitle, certificateHandle)
	html := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif;">
				<h2>Gefeliciteerd!</h2>
				<p>Je diploma voor <strong>%s</strong> is uitgegeven.</p>
				<p>Diplomanummer: <strong>%s</strong></p>
			</body>
		</html>`, courseTitle, certificateHandle)

	message := mail.NewSingleEmail(from, subject, to, plain, html)
	client := sendgrid.NewSendClient(config.AppConfig.SendGridAPIKey)

	response, err := client.Send(message)
	if err != nil {
		log.Printf("Failed to send certificate email to %s: %v", toEmail, err)
		return err
	}
	if response.StatusCode >= 400 {
		log.Printf("Certificate email to %s rejected, status %d", toEmail, response.StatusCode)
		return fmt.Errorf("sendgrid returned status %d", response.StatusCode)
	}
	return nil
}
