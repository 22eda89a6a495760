package mailer

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Plain-text notification bodies sent by the notifier worker in response to
// domain events.

func WelcomeEmail(email string) (subject, text string) {
	subject = "Welcome to Sama"
	text = fmt.Sprintf(
		"Hi %s,\n\nYour Sama account is ready. Add funds to your wallet to start supporting NGOs.\n\n— The Sama team\n",
		email,
	)
	return subject, text
}

func PaymentReceipt(email string, value decimal.Decimal) (subject, text string) {
	subject = "Funds added to your wallet"
	text = fmt.Sprintf(
		"Hi %s,\n\nWe added %s to your Sama wallet.\n\n— The Sama team\n",
		email, value.StringFixed(2),
	)
	return subject, text
}

func DonationReceipt(email, ngoName string, value decimal.Decimal) (subject, text string) {
	subject = "Thank you for your donation"
	text = fmt.Sprintf(
		"Hi %s,\n\nYour donation of %s to %s has been recorded.\n\n— The Sama team\n",
		email, value.StringFixed(2), ngoName,
	)
	return subject, text
}
