package utils

import (
	"edcert/config"
	"fmt"
	"net/smtp"
	"strings"
)

// Generic Send Email
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: Learning Platform <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		fmt.Println("Error sending email:", err)
		return err
	}
	return nil
}

// HTML wrapper shared by certificate emails
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #00004D; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #00004D; line-height: 1.6; }
			.content h2 { color: #00004D; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #d7b56d; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #d7b56d; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>%s</h1>
			</div>
			<div class="content">
				%s
			</div>
			<div class="footer">
				This is an automated message. Please do not reply.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// SendCertificateIssuedEmail congratulates the learner and links the
// public verification page.
func SendCertificateIssuedEmail(email, name, courseName, code, verificationURL string) error {
	body := fmt.Sprintf(`
		<h2>Congratulations, %s!</h2>
		<p>Your certificate for <strong>%s</strong> has been issued.</p>
		<div class="info-box">
			Verification code: <strong>%s</strong>
		</div>
		<p>Anyone can confirm its authenticity using the code or the link below.</p>
		<a class="btn" href="%s">View Certificate</a>
	`, name, courseName, code, verificationURL)

	return SendEmail([]string{email}, "Your certificate is ready!", getEmailTemplate("Certificate Issued", body))
}

// SendCertificateRevokedEmail informs the learner of a revocation.
func SendCertificateRevokedEmail(email, name, courseName, reason string) error {
	body := fmt.Sprintf(`
		<h2>Hello %s,</h2>
		<p>Your certificate for <strong>%s</strong> has been revoked.</p>
		<div class="info-box">
			Reason: %s
		</div>
		<p>If you believe this is a mistake, please contact support.</p>
	`, name, courseName, reason)

	return SendEmail([]string{email}, "Certificate revoked", getEmailTemplate("Certificate Revoked", body))
}
