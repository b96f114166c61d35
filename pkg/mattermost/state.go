package mattermost

import (
	"encoding/json"

	pkgerrors "github.com/sk2andy/mattermost-buy-bot/pkg/errors"
)

// DialogState is the continuation token threaded through a dialog's opaque
// state string. Mattermost returns the string unmodified on submission, which
// lets every handler recover its identifiers without server-side sessions.
type DialogState struct {
	ChannelID string `json:"channel_id"`
	BuyID     string `json:"buy_id,omitempty"`
}

// Encode serializes the token for a dialog's state field.
func (s DialogState) Encode() string {
	raw, err := json.Marshal(s)
	if err != nil {
		// Two string fields cannot fail to marshal.
		return "{}"
	}
	return string(raw)
}

// DecodeDialogState parses and shape-checks a state string received back from
// Mattermost. The channel id is always required; callers that need a buy id
// check it themselves since creation dialogs legitimately omit it.
func DecodeDialogState(raw string) (DialogState, error) {
	if raw == "" {
		return DialogState{}, pkgerrors.New(pkgerrors.CodeValidation, "dialog state missing")
	}
	var state DialogState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return DialogState{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed dialog state")
	}
	if state.ChannelID == "" {
		return DialogState{}, pkgerrors.New(pkgerrors.CodeValidation, "dialog state missing channel id")
	}
	return state, nil
}
