package mailer

import (
	"fmt"
	"html"

	accounts "github.com/stormhaven/go-accounts"
)

// renderNotification returns the subject, plain text body, and HTML body
// for a notification kind.
func renderNotification(n accounts.Notification) (subject, textBody, htmlBody string) {
	switch n.Kind {
	case accounts.NotificationCodeResend:
		subject = "New Verification Code"
		textBody = fmt.Sprintf("Your new verification code is: %s", n.Code)
		htmlBody = buildHTMLBody("Your new verification code", n.Name, n.Code,
			"Use this code to verify your email address.")
	case accounts.NotificationPasswordReset:
		subject = "Password Reset Request - Secure Your Account"
		textBody = fmt.Sprintf("Your password reset code is: %s\n\nUse this code to reset your password. This code will expire in 1 hour.", n.Code)
		htmlBody = buildHTMLBody("Your password reset code", n.Name, n.Code,
			"Use this code to reset your password. This code will expire in 1 hour.")
	default:
		subject = "Verify Your Email - Welcome to Our App!"
		textBody = fmt.Sprintf("Your verification code is: %s\n\nWelcome to Our App! Please use this code to verify your email address.", n.Code)
		htmlBody = buildHTMLBody("Your verification code", n.Name, n.Code,
			"Welcome! Please use this code to verify your email address.")
	}
	return subject, textBody, htmlBody
}

func buildHTMLBody(title, name, code, footer string) string {
	greeting := "Hello,"
	if name != "" {
		greeting = fmt.Sprintf("Hello %s,", html.EscapeString(name))
	}

	return fmt.Sprintf(`<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body style="margin:0;padding:0;background:#ffffff;color:#0f1114;font-family:Verdana, Arial, sans-serif;">
  <table role="presentation" width="100%%" cellspacing="0" cellpadding="0" border="0" style="background:#ffffff;margin:0;padding:0;">
    <tr>
      <td align="center" style="padding:28px 16px;">
        <table role="presentation" width="560" cellspacing="0" cellpadding="0" border="0" style="width:560px;max-width:560px;background:#f6f8fa;border:1px solid #d8dee4;border-radius:6px;">
          <tr>
            <td align="center" style="padding:40px 32px;">
              <div style="font-size:16px;color:#24292f;margin-bottom:12px;">%s</div>
              <div style="font-size:20px;color:#24292f;margin-bottom:20px;">%s</div>
              <div style="font-size:36px;font-weight:bold;letter-spacing:8px;color:#0969da;margin-bottom:24px;">%s</div>
              <div style="font-size:14px;color:#57606a;">%s</div>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, greeting, title, code, footer)
}
