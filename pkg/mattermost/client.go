package mattermost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sk2andy/mattermost-buy-bot/pkg/config"
	pkgerrors "github.com/sk2andy/mattermost-buy-bot/pkg/errors"
	"github.com/sk2andy/mattermost-buy-bot/pkg/logger"
)

// API is the Mattermost surface the lifecycle services depend on. Implemented
// by *Client; tests substitute fakes.
type API interface {
	PostMessage(ctx context.Context, channelID string, message Message) error
	PostEphemeral(ctx context.Context, channelID, userID, text string) error
	SendDirectMessage(ctx context.Context, userID string, message Message) error
	OpenDialog(ctx context.Context, triggerID string, dialog Dialog, callbackURL string) error
	GetUser(ctx context.Context, userID string) (User, error)
	AddReaction(ctx context.Context, postID, emojiName string) error
	RemoveOwnReactions(ctx context.Context, postID string) error
}

var (
	errURLRequired       = errors.New("mattermost url is required")
	errTokenRequired     = errors.New("mattermost token is required")
	errBotUserIDRequired = errors.New("mattermost bot user id is required")
)

// Client talks to the Mattermost REST API (v4) with a bot bearer token.
type Client struct {
	baseURL   string
	token     string
	botUserID string
	http      *http.Client
	logger    *logger.Logger
}

// NewClient validates the credentials and returns a ready client.
func NewClient(ctx context.Context, cfg config.MattermostConfig, logg *logger.Logger) (*Client, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errURLRequired
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errTokenRequired
	}
	botUserID := strings.TrimSpace(cfg.BotUserID)
	if botUserID == "" {
		return nil, errBotUserIDRequired
	}

	if logg != nil {
		logg.Info(ctx, "mattermost client initialized")
	}

	return &Client{
		baseURL:   baseURL,
		token:     token,
		botUserID: botUserID,
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    logg,
	}, nil
}

// BotUserID returns the user id the bot acts as.
func (c *Client) BotUserID() string {
	return c.botUserID
}

func (c *Client) request(ctx context.Context, method, endpoint string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding mattermost request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v4"+endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building mattermost request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("calling mattermost %s %s", method, endpoint))
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("mattermost %s returned 404", endpoint))
		}
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("mattermost %s returned status %d", endpoint, resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding mattermost response")
	}
	return nil
}

// PostMessage publishes a message to a channel. Attachments travel inside the
// post props, as the integrations API expects.
func (c *Client) PostMessage(ctx context.Context, channelID string, message Message) error {
	props := map[string]any{}
	for k, v := range message.Props {
		props[k] = v
	}
	if len(message.Attachments) > 0 {
		props["attachments"] = message.Attachments
	}
	return c.request(ctx, http.MethodPost, "/posts", map[string]any{
		"channel_id": channelID,
		"message":    message.Text,
		"props":      props,
	}, nil)
}

// PostEphemeral sends a message only its recipient can see.
func (c *Client) PostEphemeral(ctx context.Context, channelID, userID, text string) error {
	return c.request(ctx, http.MethodPost, "/posts/ephemeral", map[string]any{
		"user_id": userID,
		"post": map[string]any{
			"channel_id": channelID,
			"message":    text,
		},
	}, nil)
}

// SendDirectMessage opens (or reuses) the direct channel between the bot and
// the user, then posts into it.
func (c *Client) SendDirectMessage(ctx context.Context, userID string, message Message) error {
	var channel struct {
		ID string `json:"id"`
	}
	if err := c.request(ctx, http.MethodPost, "/channels/direct", []string{userID, c.botUserID}, &channel); err != nil {
		return err
	}
	return c.PostMessage(ctx, channel.ID, message)
}

// OpenDialog shows an interactive dialog to the user holding triggerID. The
// submission is delivered to callbackURL.
func (c *Client) OpenDialog(ctx context.Context, triggerID string, dialog Dialog, callbackURL string) error {
	return c.request(ctx, http.MethodPost, "/actions/dialogs/open", map[string]any{
		"trigger_id": triggerID,
		"url":        callbackURL,
		"dialog":     dialog,
	}, nil)
}

// GetUser fetches a user profile by id.
func (c *Client) GetUser(ctx context.Context, userID string) (User, error) {
	var user User
	if err := c.request(ctx, http.MethodGet, "/users/"+userID, nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// AddReaction reacts to a post as the bot.
func (c *Client) AddReaction(ctx context.Context, postID, emojiName string) error {
	return c.request(ctx, http.MethodPost, "/reactions", map[string]any{
		"user_id":    c.botUserID,
		"post_id":    postID,
		"emoji_name": emojiName,
	}, nil)
}

// RemoveOwnReactions deletes every reaction the bot previously left on a post,
// so the next reaction is the post's single status marker.
func (c *Client) RemoveOwnReactions(ctx context.Context, postID string) error {
	var reactions []Reaction
	if err := c.request(ctx, http.MethodGet, "/posts/"+postID+"/reactions", nil, &reactions); err != nil {
		return err
	}
	for _, reaction := range reactions {
		if reaction.UserID != c.botUserID {
			continue
		}
		endpoint := fmt.Sprintf("/users/%s/posts/%s/reactions/%s", c.botUserID, postID, reaction.EmojiName)
		if err := c.request(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
			return err
		}
	}
	return nil
}
