package buys

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sk2andy/mattermost-buy-bot/pkg/db/models"
	"github.com/sk2andy/mattermost-buy-bot/pkg/enums"
)

func feeBuy() *models.Buy {
	return &models.Buy{
		ChannelID:     "chan-1",
		BuyID:         "buy-1",
		CreatorUserID: "creator-1",
		Name:          "Vitamin C Bulk",
		Unit:          enums.ShareUnitGram,
		ShareSize:     decimal.NewFromInt(100),
		PricePerShare: decimal.NewFromInt(10),
		OrgFee:        decimal.NullDecimal{Decimal: decimal.NewFromInt(2), Valid: true},
		LabFee:        decimal.NullDecimal{Decimal: decimal.NewFromInt(1), Valid: true},
	}
}

func TestPaymentMessageAppliesFeesOncePerInterest(t *testing.T) {
	interest := models.Interest{
		ChannelID: "chan-1",
		UserID:    "user-1",
		BuyID:     "buy-1",
		Shares:    decimal.NewFromInt(3),
	}

	msg := PaymentMessage(feeBuy(), interest, "https://bot.example.com")
	// 3 * 10 + 2 + 1, fees are flat and never scale with shares.
	if !strings.Contains(msg.Text, "**Amount to pay:** 33 USD") {
		t.Fatalf("unexpected amount in %q", msg.Text)
	}
	if !strings.Contains(msg.Text, "payment details later") {
		t.Fatalf("expected details-later hint without destinations, got %q", msg.Text)
	}
	if len(msg.Attachments) != 1 || len(msg.Attachments[0].Actions) != 1 {
		t.Fatalf("expected a single mark-payed button, got %+v", msg.Attachments)
	}
	action := msg.Attachments[0].Actions[0]
	if action.Integration.URL != "https://bot.example.com/mark-payed" {
		t.Fatalf("unexpected button url %q", action.Integration.URL)
	}
	if action.Integration.Context["user_id"] != "user-1" {
		t.Fatalf("button context must carry the member, got %v", action.Integration.Context)
	}
}

func TestPaymentMessageRendersDestinations(t *testing.T) {
	buy := feeBuy()
	buy.OrgFee = decimal.NullDecimal{}
	buy.LabFee = decimal.NullDecimal{}
	paypal := "alice"
	wallet := "0xabc123"
	wise := "alice-w"
	buy.Paypal = &paypal
	buy.USDCWallet = &wallet
	buy.WiseID = &wise

	interest := models.Interest{Shares: decimal.NewFromInt(1)}
	msg := PaymentMessage(buy, interest, "https://bot.example.com")

	if !strings.Contains(msg.Text, "https://www.paypal.me/alice/10USD") {
		t.Fatalf("expected paypal.me link with amount, got %q", msg.Text)
	}
	if !strings.Contains(msg.Text, "https://wise.com/pay/me/alice-w") {
		t.Fatalf("expected wise link, got %q", msg.Text)
	}
	if !strings.Contains(msg.Text, "`0xabc123`") {
		t.Fatalf("expected wallet as inline code, got %q", msg.Text)
	}
}

func TestCreateBuyDialogPrefillsExistingBuy(t *testing.T) {
	buy := feeBuy()
	buy.HalfSharesAllowed = true
	dialog := CreateBuyDialog(buy)

	defaults := map[string]string{}
	for _, element := range dialog.Elements {
		defaults[element.Name] = element.Default
	}
	expected := map[string]string{
		"buy_name":            "Vitamin C Bulk",
		"unit_for_shares":     "g",
		"share_size":          "100",
		"price_per_share":     "10",
		"org_fee":             "2",
		"lab_fee":             "1",
		"half_shares_allowed": "true",
	}
	for name, want := range expected {
		if defaults[name] != want {
			t.Fatalf("element %q: expected default %q, got %q", name, want, defaults[name])
		}
	}
}

func TestAnnouncementMessageCarriesInterestButton(t *testing.T) {
	msg := AnnouncementMessage(feeBuy(), "@alice", "https://bot.example.com")
	if !strings.Contains(msg.Text, "@alice") {
		t.Fatalf("expected creator named, got %q", msg.Text)
	}
	if len(msg.Attachments) != 1 || len(msg.Attachments[0].Actions) != 1 {
		t.Fatalf("expected one interest button, got %+v", msg.Attachments)
	}
	if msg.Attachments[0].Actions[0].Integration.URL != "https://bot.example.com/interest" {
		t.Fatalf("unexpected url %q", msg.Attachments[0].Actions[0].Integration.URL)
	}
}
