package interests

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sk2andy/mattermost-buy-bot/pkg/db/models"
	"github.com/sk2andy/mattermost-buy-bot/pkg/mattermost"
)

// InterestDialog builds the shares/email form for one buy. An existing
// interest pre-fills the fields so re-submitting edits in place.
func InterestDialog(buy *models.Buy, existing *models.Interest) mattermost.Dialog {
	var shares, email string
	if existing != nil {
		shares = existing.Shares.String()
		email = existing.Email
	}

	sharesLabel := fmt.Sprintf("Number of shares (%s %s each)", buy.ShareSize, buy.Unit)
	help := "Whole shares only."
	if buy.HalfSharesAllowed {
		help = "Half shares are allowed, e.g. 1.5."
	}

	return mattermost.NewDialog("interest-dialog", "Mark your interest").
		TextElement(mattermost.DialogElement{
			DisplayName: sharesLabel,
			Name:        "shares",
			Subtype:     "number",
			HelpText:    help,
			Default:     shares,
		}).
		TextElement(mattermost.DialogElement{
			DisplayName: "Email",
			Name:        "email",
			Subtype:     "email",
			Optional:    true,
			Default:     email,
		}).
		SubmitLabel("Submit").
		State(mattermost.DialogState{ChannelID: buy.ChannelID, BuyID: buy.BuyID}).
		Build()
}

// InterestSavedText privately confirms the recorded interest and previews the
// amount due once the buy closes.
func InterestSavedText(buy *models.Buy, interest *models.Interest) string {
	amount := buy.AmountToPay(interest.Shares)
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are in for **%s** share(s) of **%s**.", interest.Shares, buy.Name)
	if interest.Email != "" {
		fmt.Fprintf(&sb, " Contact email: %s.", interest.Email)
	}
	fmt.Fprintf(&sb, " Amount to pay once the buy closes: **%s USD**.", amount)
	return sb.String()
}

// interestRow pairs an interest with the resolved profile of its member.
type interestRow struct {
	interest models.Interest
	username string
}

// InterestListText renders the organizer's overview as a markdown table with
// a totals line.
func InterestListText(buy *models.Buy, rows []interestRow) string {
	if len(rows) == 0 {
		return fmt.Sprintf("Nobody has marked interest in **%s** yet.", buy.Name)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Interested in **%s**:\n\n", buy.Name)
	sb.WriteString("| User | Shares | Email | Payed |\n")
	sb.WriteString("| --- | --- | --- | --- |\n")

	totalShares := decimal.Zero
	totalAmount := decimal.Zero
	for _, row := range rows {
		payed := "❌"
		if row.interest.Payed {
			payed = "✅"
		}
		fmt.Fprintf(&sb, "| @%s | %s | %s | %s |\n", row.username, row.interest.Shares, row.interest.Email, payed)
		totalShares = totalShares.Add(row.interest.Shares)
		totalAmount = totalAmount.Add(buy.AmountToPay(row.interest.Shares))
	}
	fmt.Fprintf(&sb, "\n**Total:** %s share(s), %s USD", totalShares, totalAmount)
	return sb.String()
}

// PaymentClaimMessage asks the organizer to confirm or reject one member's
// payment claim. The context carries the member and the post the status
// reaction belongs on.
func PaymentClaimMessage(buy *models.Buy, interest *models.Interest, buyerUsername, paymentPostID, botURL string) mattermost.Message {
	amount := buy.AmountToPay(interest.Shares)
	text := fmt.Sprintf(
		"@%s marked their payment of **%s USD** for **%s** as done. Please confirm once the money arrived.",
		buyerUsername, amount, buy.Name,
	)

	context := map[string]any{
		"channel_id": interest.ChannelID,
		"user_id":    interest.UserID,
		"buy_id":     interest.BuyID,
		"post_id":    paymentPostID,
	}
	return mattermost.NewMessage().
		Text(text).
		Attachment(func(a *mattermost.AttachmentBuilder) {
			a.Text("Did the payment arrive?").
				Button("confirmpayment", "Confirm", botURL+"/confirm-payment", context).
				Button("rejectpayment", "Reject", botURL+"/reject-payment", context)
		}).
		Build()
}

// PaymentClaimAckText tells the member their claim reached the organizer.
func PaymentClaimAckText(buy *models.Buy) string {
	return fmt.Sprintf("Your payment for **%s** was reported to the organizer. You will hear back once it is confirmed.", buy.Name)
}

// PaymentThanksText is the first of the two notices a confirmed member gets.
func PaymentThanksText() string {
	return "Thank you for your payment!"
}

// PaymentConfirmedText tells the member the organizer confirmed the money
// arrived.
func PaymentConfirmedText(buy *models.Buy) string {
	return fmt.Sprintf("The organizer has confirmed your payment for **%s**.", buy.Name)
}

// PaymentRejectedText tells the member the organizer could not match their
// payment and names who to contact.
func PaymentRejectedText(buy *models.Buy, organizerUsername string) string {
	return fmt.Sprintf(
		"@%s could not confirm your payment for **%s**. Please get in touch with them.",
		organizerUsername, buy.Name,
	)
}

// PaymentRetryHintText follows a rejection and tells the member how to report
// the payment again.
func PaymentRetryHintText() string {
	return "Once your payment went through, just mark it as payed again."
}
