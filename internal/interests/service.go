package interests

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/sk2andy/mattermost-buy-bot/pkg/config"
	"github.com/sk2andy/mattermost-buy-bot/pkg/db/models"
	pkgerrors "github.com/sk2andy/mattermost-buy-bot/pkg/errors"
	"github.com/sk2andy/mattermost-buy-bot/pkg/logger"
	"github.com/sk2andy/mattermost-buy-bot/pkg/mattermost"
)

const (
	emojiConfirmed = "white_check_mark"
	emojiRejected  = "x"

	userLookupConcurrency = 5
)

// buyGetter is the slice of the buys domain this service reads.
type buyGetter interface {
	Get(ctx context.Context, channelID, buyID string) (*models.Buy, error)
}

// Service drives the member side of a buy: marking interest, the payment
// claim, and the organizer's confirm/reject verdicts.
type Service interface {
	StartInterest(ctx context.Context, action mattermost.PostAction) error
	Save(ctx context.Context, submission mattermost.DialogSubmission) error
	ListInterested(ctx context.Context, action mattermost.PostAction) error
	MarkPayed(ctx context.Context, action mattermost.PostAction) error
	ConfirmPayment(ctx context.Context, action mattermost.PostAction) error
	RejectPayment(ctx context.Context, action mattermost.PostAction) error
}

type service struct {
	repo     Repository
	buys     buyGetter
	mm       mattermost.API
	bot      config.BotConfig
	logger   *logger.Logger
	validate *validator.Validate
}

// NewService builds an interest service with the required dependencies.
func NewService(repo Repository, buys buyGetter, mm mattermost.API, bot config.BotConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("interests repository required")
	}
	if buys == nil {
		return nil, fmt.Errorf("buy getter required")
	}
	if mm == nil {
		return nil, fmt.Errorf("mattermost client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		buys:     buys,
		mm:       mm,
		bot:      bot,
		logger:   logg,
		validate: validator.New(),
	}, nil
}

// StartInterest opens the interest dialog, pre-filled when the member already
// marked interest before.
func (s *service) StartInterest(ctx context.Context, action mattermost.PostAction) error {
	buy, err := s.loadBuy(ctx, action.ContextString("channel_id"), action.ContextString("buy_id"))
	if err != nil {
		return err
	}
	if buy.Closed {
		return s.ephemeralNotice(ctx, action.ChannelID, action.UserID, "This buy is closed; interest can no longer change.")
	}

	existing, err := s.repo.Get(ctx, buy.ChannelID, action.UserID, buy.BuyID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading interest")
	}

	dialog := InterestDialog(buy, existing)
	if err := s.mm.OpenDialog(ctx, action.TriggerID, dialog, s.bot.CallbackURL("/save-interest")); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "opening interest dialog")
	}
	return nil
}

// Save records or updates the member's interest. Re-submitting never touches
// the payed flag; only the organizer's verdict does.
func (s *service) Save(ctx context.Context, submission mattermost.DialogSubmission) error {
	if submission.Cancelled {
		return nil
	}

	state, err := mattermost.DecodeDialogState(submission.State)
	if err != nil {
		return err
	}
	ctx = s.logger.WithBuyID(s.logger.WithChannelID(ctx, state.ChannelID), state.BuyID)

	buy, err := s.loadBuy(ctx, state.ChannelID, state.BuyID)
	if err != nil {
		return err
	}
	if buy.Closed {
		return s.ephemeralNotice(ctx, buy.ChannelID, submission.UserID, "This buy is closed; interest can no longer change.")
	}

	fieldErrs := map[string]string{}
	shares := parseShares(submission.Field("shares"), buy.HalfSharesAllowed, fieldErrs)
	email := submission.Field("email")
	if email != "" {
		if err := s.validate.Var(email, "email"); err != nil {
			fieldErrs["email"] = "Enter a valid email address."
		}
	}
	if len(fieldErrs) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid interest submission").WithDetails(fieldErrs)
	}

	interest := &models.Interest{
		ChannelID: buy.ChannelID,
		UserID:    submission.UserID,
		BuyID:     buy.BuyID,
		Shares:    shares,
		Email:     email,
	}
	existing, err := s.repo.Get(ctx, buy.ChannelID, submission.UserID, buy.BuyID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading interest")
	}
	if existing != nil {
		interest.Payed = existing.Payed
		interest.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.Upsert(ctx, interest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving interest")
	}
	s.logger.Info(ctx, "interest saved")

	return s.ephemeralNotice(ctx, buy.ChannelID, submission.UserID, InterestSavedText(buy, interest))
}

// ListInterested sends the organizer a private overview of everyone who is
// in, with shares, amounts and payment status. Profiles resolve concurrently
// but the rows keep the repository order.
func (s *service) ListInterested(ctx context.Context, action mattermost.PostAction) error {
	buy, err := s.loadBuy(ctx, action.ContextString("channel_id"), action.ContextString("buy_id"))
	if err != nil {
		return err
	}
	if action.UserID != buy.CreatorUserID {
		return s.ephemeralNotice(ctx, action.ChannelID, action.UserID, "Only the creator of the buy can list interested members.")
	}

	interests, err := s.repo.ListByBuy(ctx, buy.ChannelID, buy.BuyID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing interests")
	}

	rows := make([]interestRow, len(interests))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(userLookupConcurrency)
	for i, interest := range interests {
		rows[i] = interestRow{interest: interest, username: interest.UserID}
		group.Go(func() error {
			user, err := s.mm.GetUser(groupCtx, interest.UserID)
			if err != nil {
				// A deleted account should not hide the whole list.
				s.logger.Warn(groupCtx, "resolving member profile failed")
				return nil
			}
			if user.Username != "" {
				rows[i].username = user.Username
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving member profiles")
	}

	return s.ephemeralNotice(ctx, action.ChannelID, action.UserID, InterestListText(buy, rows))
}

// MarkPayed handles the member's "I payed" claim: the organizer gets a
// private confirm/reject prompt referencing the member's payment message.
func (s *service) MarkPayed(ctx context.Context, action mattermost.PostAction) error {
	buy, err := s.loadBuy(ctx, action.ContextString("channel_id"), action.ContextString("buy_id"))
	if err != nil {
		return err
	}
	interest, err := s.repo.Get(ctx, buy.ChannelID, action.UserID, buy.BuyID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading interest")
	}
	if interest == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no interest recorded for this buy")
	}

	buyerUsername := action.UserID
	if user, err := s.mm.GetUser(ctx, action.UserID); err == nil && user.Username != "" {
		buyerUsername = user.Username
	}

	claim := PaymentClaimMessage(buy, interest, buyerUsername, action.PostID, s.bot.BaseURL)
	if err := s.mm.SendDirectMessage(ctx, buy.CreatorUserID, claim); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "notifying organizer")
	}
	ack := mattermost.NewMessage().Text(PaymentClaimAckText(buy)).Build()
	if err := s.mm.SendDirectMessage(ctx, action.UserID, ack); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acknowledging member")
	}
	s.logger.Info(ctx, "payment claim forwarded")
	return nil
}

// ConfirmPayment is the organizer's verdict that the money arrived: the
// interest flips to payed and the member's payment message gets a single
// ✅ from the bot.
func (s *service) ConfirmPayment(ctx context.Context, action mattermost.PostAction) error {
	return s.settlePayment(ctx, action, true)
}

// RejectPayment is the organizer's verdict that no payment arrived: the payed
// flag drops back and the member's payment message gets a single ❌.
func (s *service) RejectPayment(ctx context.Context, action mattermost.PostAction) error {
	return s.settlePayment(ctx, action, false)
}

func (s *service) settlePayment(ctx context.Context, action mattermost.PostAction, confirmed bool) error {
	buy, err := s.loadBuy(ctx, action.ContextString("channel_id"), action.ContextString("buy_id"))
	if err != nil {
		return err
	}
	if action.UserID != buy.CreatorUserID {
		return s.ephemeralNotice(ctx, action.ChannelID, action.UserID, "Only the creator of the buy can settle payments.")
	}

	buyerID := action.ContextString("user_id")
	interest, err := s.repo.Get(ctx, buy.ChannelID, buyerID, buy.BuyID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading interest")
	}
	if interest == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no interest recorded for this buy")
	}

	interest.Payed = confirmed
	if err := s.repo.Upsert(ctx, interest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating payment status")
	}

	// One status marker per payment message: clear earlier verdicts first.
	if postID := action.ContextString("post_id"); postID != "" {
		if err := s.mm.RemoveOwnReactions(ctx, postID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing status reactions")
		}
		emoji := emojiConfirmed
		if !confirmed {
			emoji = emojiRejected
		}
		if err := s.mm.AddReaction(ctx, postID, emoji); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adding status reaction")
		}
	}

	notices := []string{PaymentThanksText(), PaymentConfirmedText(buy)}
	if !confirmed {
		organizerUsername := buy.CreatorUserID
		if user, err := s.mm.GetUser(ctx, buy.CreatorUserID); err == nil && user.Username != "" {
			organizerUsername = user.Username
		}
		notices = []string{PaymentRejectedText(buy, organizerUsername), PaymentRetryHintText()}
	}
	for _, text := range notices {
		if err := s.mm.SendDirectMessage(ctx, interest.UserID, mattermost.NewMessage().Text(text).Build()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "notifying member")
		}
	}
	s.logger.Info(ctx, "payment settled")
	return nil
}

func (s *service) loadBuy(ctx context.Context, channelID, buyID string) (*models.Buy, error) {
	if channelID == "" || buyID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "channel id and buy id required")
	}
	buy, err := s.buys.Get(ctx, channelID, buyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading buy")
	}
	if buy == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buy not found")
	}
	return buy, nil
}

func (s *service) ephemeralNotice(ctx context.Context, channelID, userID, text string) error {
	if err := s.mm.PostEphemeral(ctx, channelID, userID, text); err != nil {
		s.logger.Warn(ctx, "sending ephemeral notice failed")
	}
	return nil
}

// parseShares validates the requested share count. Whole shares always pass;
// halves only when the buy allows them.
func parseShares(raw string, halfAllowed bool, fieldErrs map[string]string) decimal.Decimal {
	if raw == "" {
		fieldErrs["shares"] = "This field is required."
		return decimal.Zero
	}
	shares, err := decimal.NewFromString(raw)
	if err != nil {
		fieldErrs["shares"] = "Enter a number."
		return decimal.Zero
	}
	if shares.Sign() <= 0 {
		fieldErrs["shares"] = "Must be greater than zero."
		return decimal.Zero
	}
	if shares.IsInteger() {
		return shares
	}
	if !halfAllowed {
		fieldErrs["shares"] = "Only whole shares are allowed for this buy."
		return decimal.Zero
	}
	if !shares.Mul(decimal.NewFromInt(2)).IsInteger() {
		fieldErrs["shares"] = "Shares must be in steps of 0.5."
		return decimal.Zero
	}
	return shares
}
