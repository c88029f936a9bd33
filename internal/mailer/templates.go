package mailer

import (
	"html/template"
	"strings"
)

var (
	verificationTmpl = template.Must(template.New("verification").Parse(`<html>
<body style="font-family: sans-serif; color: #1a1a1a;">
  <h2>Ahoy, {{.Username}}!</h2>
  <p>Welcome aboard. Confirm your email address to start hosting podcasts.</p>
  <p><a href="{{.Link}}" style="background: #4f46e5; color: #ffffff; padding: 10px 18px; border-radius: 6px; text-decoration: none;">Verify email</a></p>
  <p>This link expires in 10 minutes. If you did not create an account, you can ignore this message.</p>
</body>
</html>`))

	passwordResetTmpl = template.Must(template.New("password_reset").Parse(`<html>
<body style="font-family: sans-serif; color: #1a1a1a;">
  <h2>Hello {{.Username}},</h2>
  <p>We received a request to reset your password.</p>
  <p><a href="{{.Link}}" style="background: #4f46e5; color: #ffffff; padding: 10px 18px; border-radius: 6px; text-decoration: none;">Reset password</a></p>
  <p>This link expires in 10 minutes. If you did not request a reset, your password is unchanged.</p>
</body>
</html>`))

	deletionTmpl = template.Must(template.New("deletion").Parse(`<html>
<body style="font-family: sans-serif; color: #1a1a1a;">
  <h2>Goodbye, {{.Username}}.</h2>
  <p>Your account, podcasts, and uploaded media have been permanently deleted.</p>
  <p>Thanks for sailing with us. You are welcome back any time.</p>
</body>
</html>`))
)

type mailData struct {
	Username string
	Link     string
}

func render(t *template.Template, data mailData) string {
	var b strings.Builder
	// Templates are static and parse at init; execution cannot fail on
	// a string builder.
	_ = t.Execute(&b, data)
	return b.String()
}

func verificationBody(username, link string) string {
	return render(verificationTmpl, mailData{Username: username, Link: link})
}

func passwordResetBody(username, link string) string {
	return render(passwordResetTmpl, mailData{Username: username, Link: link})
}

func deletionBody(username string) string {
	return render(deletionTmpl, mailData{Username: username})
}
