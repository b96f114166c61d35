package controllers

import (
	"encoding/json"
	"net/http"

	pkgerrors "github.com/sk2andy/mattermost-buy-bot/pkg/errors"
	"github.com/sk2andy/mattermost-buy-bot/pkg/mattermost"
)

func mattermostSlashCommand(r *http.Request) (mattermost.SlashCommand, error) {
	cmd, err := mattermost.ParseSlashCommand(r)
	if err != nil {
		return mattermost.SlashCommand{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding slash command")
	}
	return cmd, nil
}

func parseDialogSubmission(r *http.Request) (mattermost.DialogSubmission, error) {
	var submission mattermost.DialogSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		return mattermost.DialogSubmission{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding dialog submission")
	}
	return submission, nil
}

func parsePostAction(r *http.Request) (mattermost.PostAction, error) {
	var action mattermost.PostAction
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		return mattermost.PostAction{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding post action")
	}
	return action, nil
}

// dialogFieldErrors extracts per-field messages from a validation error so
// they can travel back into the open dialog.
func dialogFieldErrors(err error) (map[string]string, bool) {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		return nil, false
	}
	fields, ok := typed.Details().(map[string]string)
	if !ok || len(fields) == 0 {
		return nil, false
	}
	return fields, true
}
