package mailer

import "fmt"

const (
	verifyEmailSubject   = "Verify your email address"
	passwordResetSubject = "Reset your password"
)

func verifyEmailHTML(url string) string {
	return fmt.Sprintf(`<p>Thanks for signing up.</p>
<p>Click the link below to verify your email address:</p>
<p><a href=%q>Verify email</a></p>
<p>If you didn't create an account, you can safely ignore this email.</p>`, url)
}

func verifyEmailText(url string) string {
	return fmt.Sprintf("Thanks for signing up.\n\nVerify your email address: %s\n\nIf you didn't create an account, you can safely ignore this email.\n", url)
}

func passwordResetHTML(url string) string {
	return fmt.Sprintf(`<p>You requested a password reset.</p>
<p>Click the link below to choose a new password:</p>
<p><a href=%q>Reset password</a></p>
<p>If you didn't request this, you can safely ignore this email.</p>`, url)
}

func passwordResetText(url string) string {
	return fmt.Sprintf("You requested a password reset.\n\nChoose a new password: %s\n\nIf you didn't request this, you can safely ignore this email.\n", url)
}
