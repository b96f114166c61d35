package mattermost

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// SlashCommand is the form-encoded request Mattermost sends when a user runs
// a registered slash command.
type SlashCommand struct {
	Token       string
	TeamID      string
	ChannelID   string
	ChannelName string
	UserID      string
	UserName    string
	Command     string
	Text        string
	ResponseURL string
	TriggerID   string
}

// ParseSlashCommand reads a slash command payload from an HTTP request.
func ParseSlashCommand(r *http.Request) (SlashCommand, error) {
	if err := r.ParseForm(); err != nil {
		return SlashCommand{}, err
	}
	return slashCommandFromValues(r.PostForm), nil
}

func slashCommandFromValues(values url.Values) SlashCommand {
	return SlashCommand{
		Token:       values.Get("token"),
		TeamID:      values.Get("team_id"),
		ChannelID:   values.Get("channel_id"),
		ChannelName: values.Get("channel_name"),
		UserID:      values.Get("user_id"),
		UserName:    values.Get("user_name"),
		Command:     values.Get("command"),
		Text:        values.Get("text"),
		ResponseURL: values.Get("response_url"),
		TriggerID:   values.Get("trigger_id"),
	}
}

// DialogSubmission is the JSON payload Mattermost posts when a user submits an
// interactive dialog. State round-trips unmodified from the dialog that opened
// it.
type DialogSubmission struct {
	Type       string         `json:"type"`
	CallbackID string         `json:"callback_id"`
	State      string         `json:"state"`
	UserID     string         `json:"user_id"`
	ChannelID  string         `json:"channel_id"`
	TeamID     string         `json:"team_id"`
	Submission map[string]any `json:"submission"`
	Cancelled  bool           `json:"cancelled"`
}

// Field returns a submission value as a string, tolerating the mixed
// string/number/bool types Mattermost sends for dialog elements.
func (d DialogSubmission) Field(name string) string {
	return anyToString(d.Submission[name])
}

// BoolField returns a submission value as a bool.
func (d DialogSubmission) BoolField(name string) bool {
	switch v := d.Submission[name].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

// PostAction is the JSON payload Mattermost posts when a user clicks a button
// attached to a message. Context carries whatever identifiers the button
// embedded when the message was built.
type PostAction struct {
	UserID    string         `json:"user_id"`
	ChannelID string         `json:"channel_id"`
	TeamID    string         `json:"team_id"`
	PostID    string         `json:"post_id"`
	TriggerID string         `json:"trigger_id"`
	Type      string         `json:"type"`
	Context   map[string]any `json:"context"`
}

// ContextString returns a context value as a string.
func (p PostAction) ContextString(key string) string {
	return anyToString(p.Context[key])
}

// User is the subset of a Mattermost user profile the bot consumes.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Nickname  string `json:"nickname"`
	IsBot     bool   `json:"is_bot"`
}

// Reaction is a single emoji reaction on a post.
type Reaction struct {
	UserID    string `json:"user_id"`
	PostID    string `json:"post_id"`
	EmojiName string `json:"emoji_name"`
}

func anyToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode to float64; trim the mantissa noise.
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
