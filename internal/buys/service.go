package buys

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/sk2andy/mattermost-buy-bot/pkg/config"
	"github.com/sk2andy/mattermost-buy-bot/pkg/db/models"
	"github.com/sk2andy/mattermost-buy-bot/pkg/enums"
	pkgerrors "github.com/sk2andy/mattermost-buy-bot/pkg/errors"
	"github.com/sk2andy/mattermost-buy-bot/pkg/logger"
	"github.com/sk2andy/mattermost-buy-bot/pkg/mattermost"
)

// interestLister is the slice of the interests domain this service reads.
type interestLister interface {
	ListByBuy(ctx context.Context, channelID, buyID string) ([]models.Interest, error)
}

// Service drives the buy lifecycle: creation and edit dialogs, closing with
// payment details, and payment reminders.
type Service interface {
	StartCreation(ctx context.Context, cmd mattermost.SlashCommand) error
	Save(ctx context.Context, submission mattermost.DialogSubmission) error
	StartEdit(ctx context.Context, action mattermost.PostAction) error
	StartClose(ctx context.Context, action mattermost.PostAction) error
	ConfirmClose(ctx context.Context, submission mattermost.DialogSubmission) error
	RemindPayment(ctx context.Context, action mattermost.PostAction) error
}

type service struct {
	repo      Repository
	interests interestLister
	mm        mattermost.API
	bot       config.BotConfig
	logger    *logger.Logger
	validate  *validator.Validate
}

// NewService builds a buy service with the required dependencies.
func NewService(repo Repository, interests interestLister, mm mattermost.API, bot config.BotConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("buys repository required")
	}
	if interests == nil {
		return nil, fmt.Errorf("interest lister required")
	}
	if mm == nil {
		return nil, fmt.Errorf("mattermost client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		interests: interests,
		mm:        mm,
		bot:       bot,
		logger:    logg,
		validate:  validator.New(),
	}, nil
}

// StartCreation opens the buy creation dialog for the user who ran the slash
// command.
func (s *service) StartCreation(ctx context.Context, cmd mattermost.SlashCommand) error {
	if cmd.TriggerID == "" || cmd.ChannelID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "trigger id and channel id required")
	}
	dialog := CreateBuyDialogForChannel(cmd.ChannelID)
	if err := s.mm.OpenDialog(ctx, cmd.TriggerID, dialog, s.bot.CallbackURL("/save-buy")); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "opening create buy dialog")
	}
	return nil
}

type buyForm struct {
	Name          string `validate:"required"`
	Unit          string `validate:"required"`
	ShareSize     string `validate:"required"`
	PricePerShare string `validate:"required"`
}

// Save persists a creation or edit dialog submission. A submission whose state
// carries a buy id edits that buy; otherwise a new buy is created.
func (s *service) Save(ctx context.Context, submission mattermost.DialogSubmission) error {
	if submission.Cancelled {
		return nil
	}

	state, err := mattermost.DecodeDialogState(submission.State)
	if err != nil {
		return err
	}
	ctx = s.logger.WithChannelID(ctx, state.ChannelID)

	form := buyForm{
		Name:          submission.Field("buy_name"),
		Unit:          submission.Field("unit_for_shares"),
		ShareSize:     submission.Field("share_size"),
		PricePerShare: submission.Field("price_per_share"),
	}
	fieldErrs := map[string]string{}
	if err := s.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !stdErrors.As(err, &verrs) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validating buy submission")
		}
		for _, fe := range verrs {
			fieldErrs[formFieldName(fe.Field())] = "This field is required."
		}
	}

	unit, err := enums.ParseShareUnit(form.Unit)
	if err != nil && form.Unit != "" {
		fieldErrs["unit_for_shares"] = "Unknown unit."
	}
	shareSize := parsePositiveDecimal(form.ShareSize, "share_size", fieldErrs)
	pricePerShare := parsePositiveDecimal(form.PricePerShare, "price_per_share", fieldErrs)
	orgFee := parseOptionalFee(submission.Field("org_fee"), "org_fee", fieldErrs)
	labFee := parseOptionalFee(submission.Field("lab_fee"), "lab_fee", fieldErrs)

	if len(fieldErrs) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid buy submission").WithDetails(fieldErrs)
	}

	var description *string
	if d := submission.Field("buy_description"); d != "" {
		description = &d
	}

	buy := &models.Buy{
		ChannelID:         state.ChannelID,
		BuyID:             state.BuyID,
		CreatorUserID:     submission.UserID,
		Name:              form.Name,
		Description:       description,
		Unit:              unit,
		ShareSize:         shareSize,
		PricePerShare:     pricePerShare,
		OrgFee:            orgFee,
		LabFee:            labFee,
		HalfSharesAllowed: submission.BoolField("half_shares_allowed"),
	}

	isEdit := state.BuyID != ""
	if isEdit {
		existing, err := s.repo.Get(ctx, state.ChannelID, state.BuyID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading buy")
		}
		if existing == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "buy not found")
		}
		if existing.Closed {
			return s.notice(ctx, state.ChannelID, submission.UserID, "This buy is closed and can no longer be edited.")
		}
		// Identity and close state never change through the edit dialog.
		buy.CreatorUserID = existing.CreatorUserID
		buy.Closed = existing.Closed
		buy.ClosedAt = existing.ClosedAt
		buy.Paypal = existing.Paypal
		buy.USDCWallet = existing.USDCWallet
		buy.WiseID = existing.WiseID
		buy.CreatedAt = existing.CreatedAt
	} else {
		buy.BuyID = uuid.NewString()
	}

	ctx = s.logger.WithBuyID(ctx, buy.BuyID)
	if err := s.repo.Upsert(ctx, buy); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving buy")
	}

	username := "@" + buy.CreatorUserID
	if user, err := s.mm.GetUser(ctx, buy.CreatorUserID); err == nil && user.Username != "" {
		username = "@" + user.Username
	}

	// Announce on create and re-announce on edit so the channel always sees
	// the current conditions.
	if err := s.mm.PostMessage(ctx, buy.ChannelID, AnnouncementMessage(buy, username, s.bot.BaseURL)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "announcing buy")
	}

	if isEdit {
		s.logger.Info(ctx, "buy updated")
		msg := mattermost.NewMessage().Text(UpdatedNoticeText(buy)).Build()
		if err := s.mm.SendDirectMessage(ctx, buy.CreatorUserID, msg); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "notifying creator about update")
		}
		return nil
	}

	s.logger.Info(ctx, "buy created")
	if err := s.mm.SendDirectMessage(ctx, buy.CreatorUserID, ManageMessage(buy, s.bot.BaseURL)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sending manage message")
	}
	return nil
}

// StartEdit opens the pre-filled buy dialog for the buy the clicked button
// references. Only the creator may edit.
func (s *service) StartEdit(ctx context.Context, action mattermost.PostAction) error {
	buy, err := s.loadActionBuy(ctx, action)
	if err != nil || buy == nil {
		return err
	}
	if buy.Closed {
		return s.ephemeralNotice(ctx, action, "This buy is closed and can no longer be edited.")
	}
	dialog := CreateBuyDialog(buy)
	if err := s.mm.OpenDialog(ctx, action.TriggerID, dialog, s.bot.CallbackURL("/save-buy")); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "opening edit dialog")
	}
	return nil
}

// StartClose opens the payment details dialog. Only the creator may close.
func (s *service) StartClose(ctx context.Context, action mattermost.PostAction) error {
	buy, err := s.loadActionBuy(ctx, action)
	if err != nil || buy == nil {
		return err
	}
	if buy.Closed {
		return s.ephemeralNotice(ctx, action, "This buy is already closed.")
	}
	dialog := PaymentDetailsDialog(buy.ChannelID, buy.BuyID)
	if err := s.mm.OpenDialog(ctx, action.TriggerID, dialog, s.bot.CallbackURL("/close-buy-confirm")); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "opening close dialog")
	}
	return nil
}

// ConfirmClose stores the submitted payment details, marks the buy closed,
// announces the close in-channel and sends each interested member a private
// payment request. Members with failing direct channels do not stop the rest.
func (s *service) ConfirmClose(ctx context.Context, submission mattermost.DialogSubmission) error {
	if submission.Cancelled {
		return nil
	}

	state, err := mattermost.DecodeDialogState(submission.State)
	if err != nil {
		return err
	}
	ctx = s.logger.WithBuyID(s.logger.WithChannelID(ctx, state.ChannelID), state.BuyID)

	buy, err := s.repo.Get(ctx, state.ChannelID, state.BuyID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading buy")
	}
	if buy == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "buy not found")
	}
	if buy.Closed {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "buy is already closed")
	}

	buy.Paypal = optionalString(submission.Field("paypal"))
	buy.USDCWallet = optionalString(submission.Field("usdc_wallet"))
	buy.WiseID = optionalString(submission.Field("wise_id"))
	buy.Closed = true
	now := time.Now().UTC()
	buy.ClosedAt = &now

	if err := s.repo.Upsert(ctx, buy); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "closing buy")
	}
	s.logger.Info(ctx, "buy closed")

	if err := s.mm.PostMessage(ctx, buy.ChannelID, mattermost.NewMessage().Text(ClosedAnnouncementText(buy)).Build()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "announcing close")
	}

	interests, err := s.interests.ListByBuy(ctx, buy.ChannelID, buy.BuyID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing interests")
	}

	var dmErrs error
	for _, interest := range interests {
		msg := PaymentMessage(buy, interest, s.bot.BaseURL)
		if err := s.mm.SendDirectMessage(ctx, interest.UserID, msg); err != nil {
			s.logger.Error(ctx, "sending payment message", err)
			dmErrs = multierr.Append(dmErrs, err)
		}
	}
	if dmErrs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, dmErrs, "sending payment messages")
	}
	return nil
}

// RemindPayment privately nudges every interested member who has not payed
// yet. Only the creator may trigger reminders, and only after the close.
func (s *service) RemindPayment(ctx context.Context, action mattermost.PostAction) error {
	buy, err := s.loadActionBuy(ctx, action)
	if err != nil || buy == nil {
		return err
	}
	if !buy.Closed {
		return s.ephemeralNotice(ctx, action, "This buy is not closed yet; there is nothing to pay.")
	}

	interests, err := s.interests.ListByBuy(ctx, buy.ChannelID, buy.BuyID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing interests")
	}

	var dmErrs error
	reminded := 0
	for _, interest := range interests {
		if interest.Payed {
			continue
		}
		msg := mattermost.NewMessage().Text(ReminderText(buy)).Build()
		if err := s.mm.SendDirectMessage(ctx, interest.UserID, msg); err != nil {
			s.logger.Error(ctx, "sending payment reminder", err)
			dmErrs = multierr.Append(dmErrs, err)
			continue
		}
		reminded++
	}
	if dmErrs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, dmErrs, "sending payment reminders")
	}
	return s.ephemeralNotice(ctx, action, fmt.Sprintf("Reminded %d member(s).", reminded))
}

// loadActionBuy resolves the buy a button click refers to and enforces that
// the clicking user is the creator. A nil buy with a nil error means the
// caller already received an ephemeral explanation.
func (s *service) loadActionBuy(ctx context.Context, action mattermost.PostAction) (*models.Buy, error) {
	channelID := action.ContextString("channel_id")
	buyID := action.ContextString("buy_id")
	if channelID == "" || buyID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "channel id and buy id required")
	}
	ctx = s.logger.WithBuyID(s.logger.WithChannelID(ctx, channelID), buyID)

	buy, err := s.repo.Get(ctx, channelID, buyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading buy")
	}
	if buy == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buy not found")
	}
	if action.UserID != buy.CreatorUserID {
		return nil, s.ephemeralNotice(ctx, action, "Only the creator of the buy can do this.")
	}
	return buy, nil
}

func (s *service) ephemeralNotice(ctx context.Context, action mattermost.PostAction, text string) error {
	return s.notice(ctx, action.ChannelID, action.UserID, text)
}

func (s *service) notice(ctx context.Context, channelID, userID, text string) error {
	if err := s.mm.PostEphemeral(ctx, channelID, userID, text); err != nil {
		s.logger.Warn(ctx, "sending ephemeral notice failed")
	}
	return nil
}

func parsePositiveDecimal(raw, field string, fieldErrs map[string]string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		fieldErrs[field] = "Enter a number."
		return decimal.Zero
	}
	if value.Sign() <= 0 {
		fieldErrs[field] = "Must be greater than zero."
		return decimal.Zero
	}
	return value
}

func parseOptionalFee(raw, field string, fieldErrs map[string]string) decimal.NullDecimal {
	if raw == "" {
		return decimal.NullDecimal{}
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		fieldErrs[field] = "Enter a number."
		return decimal.NullDecimal{}
	}
	if value.Sign() < 0 {
		fieldErrs[field] = "Must not be negative."
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: value, Valid: true}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// formFieldName maps a validated struct field back to its dialog element name.
func formFieldName(structField string) string {
	switch structField {
	case "Name":
		return "buy_name"
	case "Unit":
		return "unit_for_shares"
	case "ShareSize":
		return "share_size"
	case "PricePerShare":
		return "price_per_share"
	default:
		return structField
	}
}
