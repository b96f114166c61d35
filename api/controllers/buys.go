package controllers

import (
	"net/http"

	"github.com/sk2andy/mattermost-buy-bot/api/responses"
	"github.com/sk2andy/mattermost-buy-bot/internal/buys"
	"github.com/sk2andy/mattermost-buy-bot/pkg/logger"
)

// CreateBuy handles the /createbuy slash command and opens the creation
// dialog.
func CreateBuy(svc buys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := mattermostSlashCommand(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithChannelID(r.Context(), cmd.ChannelID)
		if err := svc.StartCreation(ctx, cmd); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteAck(w)
	}
}

// SaveBuy handles the creation/edit dialog submission. Field-level validation
// errors travel back into the dialog; everything else is a plain API error.
func SaveBuy(svc buys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submission, err := parseDialogSubmission(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Save(r.Context(), submission); err != nil {
			if fields, ok := dialogFieldErrors(err); ok {
				responses.WriteDialogErrors(w, fields)
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteAck(w)
	}
}

// EditBuy handles the manage panel's Edit button.
func EditBuy(svc buys.Service, logg *logger.Logger) http.HandlerFunc {
	return postActionHandler(logg, func(r *http.Request) error {
		action, err := parsePostAction(r)
		if err != nil {
			return err
		}
		return svc.StartEdit(r.Context(), action)
	})
}

// CloseBuy handles the manage panel's Close button and opens the payment
// details dialog.
func CloseBuy(svc buys.Service, logg *logger.Logger) http.HandlerFunc {
	return postActionHandler(logg, func(r *http.Request) error {
		action, err := parsePostAction(r)
		if err != nil {
			return err
		}
		return svc.StartClose(r.Context(), action)
	})
}

// CloseBuyConfirm handles the payment details dialog submission.
func CloseBuyConfirm(svc buys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submission, err := parseDialogSubmission(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.ConfirmClose(r.Context(), submission); err != nil {
			if fields, ok := dialogFieldErrors(err); ok {
				responses.WriteDialogErrors(w, fields)
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteAck(w)
	}
}

// RemindPayment handles the manage panel's Remind Payment button.
func RemindPayment(svc buys.Service, logg *logger.Logger) http.HandlerFunc {
	return postActionHandler(logg, func(r *http.Request) error {
		action, err := parsePostAction(r)
		if err != nil {
			return err
		}
		return svc.RemindPayment(r.Context(), action)
	})
}

func postActionHandler(logg *logger.Logger, handle func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := handle(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteAck(w)
	}
}
