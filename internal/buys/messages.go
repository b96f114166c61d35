package buys

import (
	"fmt"
	"strings"

	"github.com/sk2andy/mattermost-buy-bot/pkg/db/models"
	"github.com/sk2andy/mattermost-buy-bot/pkg/enums"
	"github.com/sk2andy/mattermost-buy-bot/pkg/mattermost"
)

// CreateBuyDialog builds the buy creation form. When buy is non-nil the
// fields are pre-filled and the state token carries the existing buy id, which
// turns the same dialog into the edit flow.
func CreateBuyDialog(buy *models.Buy) mattermost.Dialog {
	state := mattermost.DialogState{}
	var (
		name, description, unit, shareSize, pricePerShare, orgFee, labFee string
		halfShares                                                        string
	)
	if buy != nil {
		state.ChannelID = buy.ChannelID
		state.BuyID = buy.BuyID
		name = buy.Name
		if buy.Description != nil {
			description = *buy.Description
		}
		unit = buy.Unit.String()
		shareSize = buy.ShareSize.String()
		pricePerShare = buy.PricePerShare.String()
		if buy.OrgFee.Valid {
			orgFee = buy.OrgFee.Decimal.String()
		}
		if buy.LabFee.Valid {
			labFee = buy.LabFee.Decimal.String()
		}
		if buy.HalfSharesAllowed {
			halfShares = "true"
		}
	}

	unitOptions := make([]mattermost.SelectOption, 0, len(enums.ShareUnits()))
	for _, u := range enums.ShareUnits() {
		unitOptions = append(unitOptions, mattermost.SelectOption{Text: u.String(), Value: u.String()})
	}

	return mattermost.NewDialog("create-buy-dialog", "Create a Buy").
		TextElement(mattermost.DialogElement{
			DisplayName: "Name of the Buy",
			Name:        "buy_name",
			Default:     name,
		}).
		TextElement(mattermost.DialogElement{
			DisplayName: "Description of the Buy",
			Name:        "buy_description",
			Optional:    true,
			Default:     description,
		}).
		SelectElement(mattermost.DialogElement{
			DisplayName: "Unit for Shares",
			Name:        "unit_for_shares",
			Options:     unitOptions,
			Default:     unit,
		}).
		TextElement(mattermost.DialogElement{
			DisplayName: "Share Size",
			Name:        "share_size",
			Subtype:     "number",
			Default:     shareSize,
		}).
		TextElement(mattermost.DialogElement{
			DisplayName: "Price per Share in USD",
			Name:        "price_per_share",
			Subtype:     "number",
			Default:     pricePerShare,
		}).
		TextElement(mattermost.DialogElement{
			DisplayName: "Organizer Fee in USD",
			Name:        "org_fee",
			Subtype:     "number",
			Optional:    true,
			Default:     orgFee,
		}).
		TextElement(mattermost.DialogElement{
			DisplayName: "Lab Fee in USD",
			Name:        "lab_fee",
			Subtype:     "number",
			Optional:    true,
			Default:     labFee,
		}).
		BoolElement(mattermost.DialogElement{
			DisplayName: "Allow half shares",
			Name:        "half_shares_allowed",
			Optional:    true,
			Default:     halfShares,
		}).
		SubmitLabel("Create").
		State(state).
		Build()
}

// CreateBuyDialogForChannel seeds the creation dialog for a channel with no
// existing buy.
func CreateBuyDialogForChannel(channelID string) mattermost.Dialog {
	dialog := CreateBuyDialog(nil)
	dialog.State = mattermost.DialogState{ChannelID: channelID}.Encode()
	return dialog
}

// PaymentDetailsDialog collects the optional payment destinations when the
// organizer closes a buy.
func PaymentDetailsDialog(channelID, buyID string) mattermost.Dialog {
	return mattermost.NewDialog("payment-details-dialog", "Enter payment details").
		TextElement(mattermost.DialogElement{
			DisplayName: "Paypal",
			Name:        "paypal",
			Optional:    true,
		}).
		TextElement(mattermost.DialogElement{
			DisplayName: "USDC Wallet",
			Name:        "usdc_wallet",
			Optional:    true,
		}).
		TextElement(mattermost.DialogElement{
			DisplayName: "Wise ID",
			Name:        "wise_id",
			Optional:    true,
		}).
		SubmitLabel("Submit").
		NotifyOnCancel(false).
		State(mattermost.DialogState{ChannelID: channelID, BuyID: buyID}).
		Build()
}

// AnnouncementMessage is the in-channel "are you interested?" post.
func AnnouncementMessage(buy *models.Buy, username, botURL string) mattermost.Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎉 %s successfully created a buy: **\"%s\"** 🎉\n\n", username, buy.Name)
	if buy.Description != nil && *buy.Description != "" {
		fmt.Fprintf(&sb, "**Description:** %s\n\n", *buy.Description)
	}
	fmt.Fprintf(&sb, "**Share size:** %s %s\n", buy.ShareSize, buy.Unit)
	fmt.Fprintf(&sb, "**Price per share:** %s USD\n\n", buy.PricePerShare)
	sb.WriteString("Are you interested? Click on the buttons below to engage!")

	return mattermost.NewMessage().
		Text(sb.String()).
		Attachment(func(a *mattermost.AttachmentBuilder) {
			a.Text("Are you interested?").
				Pretext("Click on 'Yes' to mark your interest.").
				Button("interest", "Yes", botURL+"/interest", buttonContext(buy, "interested", buy.CreatorUserID))
		}).
		Build()
}

// ManageMessage is the private management panel sent to the creator.
func ManageMessage(buy *models.Buy, botURL string) mattermost.Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎉 You successfully created a buy: **\"%s\"** 🎉\n\n", buy.Name)
	if buy.Description != nil && *buy.Description != "" {
		fmt.Fprintf(&sb, "**Description:** %s\n\n", *buy.Description)
	}
	fmt.Fprintf(&sb, "**Share size:** %s %s\n", buy.ShareSize, buy.Unit)
	fmt.Fprintf(&sb, "**Price per share:** %s USD\n\n", buy.PricePerShare)
	sb.WriteString("You can manage your buy by clicking on the buttons below.")

	return mattermost.NewMessage().
		Text(sb.String()).
		Attachment(func(a *mattermost.AttachmentBuilder) {
			a.Text("Manage?").
				Button("buyedit", "Edit", botURL+"/edit-buy", buttonContext(buy, "buyedit", buy.CreatorUserID)).
				Button("interestlist", "List interested", botURL+"/interestlist", buttonContext(buy, "interestlist", buy.CreatorUserID)).
				Button("buyclose", "Close", botURL+"/close-buy", buttonContext(buy, "buyclose", buy.CreatorUserID)).
				Button("remindpayment", "Remind Payment", botURL+"/remind-payment", buttonContext(buy, "remindpayment", buy.CreatorUserID))
		}).
		Build()
}

// ClosedAnnouncementText is posted in-channel when a buy closes.
func ClosedAnnouncementText(buy *models.Buy) string {
	return fmt.Sprintf("Buy **%s** is closed now. You will receive individual payment messages.", buy.Name)
}

// PaymentMessage is the private payment request sent to one interested member
// after the buy closes. The amount applies the flat fees once per interest.
func PaymentMessage(buy *models.Buy, interest models.Interest, botURL string) mattermost.Message {
	amount := buy.AmountToPay(interest.Shares)

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎉 **\"%s\"** is now ready for payment! 🎉\n\n", buy.Name)
	fmt.Fprintf(&sb, "**Share size:** %s %s\n", buy.ShareSize, buy.Unit)
	fmt.Fprintf(&sb, "**Price per share:** %s USD\n\n", buy.PricePerShare)
	fmt.Fprintf(&sb, "**Amount to pay:** %s USD\n\n", amount)

	if !buy.HasPaymentDetails() {
		sb.WriteString("You will receive payment details later.")
	} else {
		sb.WriteString("Click on the button below to pay.")
	}

	if buy.Paypal != nil && *buy.Paypal != "" {
		fmt.Fprintf(&sb, "\n\n**PayPal:** [Pay Now](https://www.paypal.me/%s/%sUSD)", *buy.Paypal, amount)
	}
	if buy.WiseID != nil && *buy.WiseID != "" {
		fmt.Fprintf(&sb, "\n\n**Wise:** [Pay Now](https://wise.com/pay/me/%s)", *buy.WiseID)
	}
	if buy.USDCWallet != nil && *buy.USDCWallet != "" {
		fmt.Fprintf(&sb, "\n\n**USDC Wallet:** `%s`", *buy.USDCWallet)
	}

	return mattermost.NewMessage().
		Text(sb.String()).
		Attachment(func(a *mattermost.AttachmentBuilder) {
			a.Button("payed", "Mark Payed", botURL+"/mark-payed", map[string]any{
				"action":     "payed",
				"channel_id": interest.ChannelID,
				"user_id":    interest.UserID,
				"buy_id":     interest.BuyID,
			})
		}).
		Build()
}

// ReminderText nudges one unpaid member.
func ReminderText(buy *models.Buy) string {
	return fmt.Sprintf("Please pay for the buy **%s**", buy.Name)
}

// UpdatedNoticeText privately confirms an edit to the organizer.
func UpdatedNoticeText(buy *models.Buy) string {
	return fmt.Sprintf("Your buy **%s** has been updated.", buy.Name)
}

func buttonContext(buy *models.Buy, action, userID string) map[string]any {
	return map[string]any{
		"action":     action,
		"channel_id": buy.ChannelID,
		"user_id":    userID,
		"buy_id":     buy.BuyID,
	}
}
