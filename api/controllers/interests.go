package controllers

import (
	"net/http"

	"github.com/sk2andy/mattermost-buy-bot/api/responses"
	"github.com/sk2andy/mattermost-buy-bot/internal/interests"
	"github.com/sk2andy/mattermost-buy-bot/pkg/logger"
)

// Interest handles the announcement's "Yes" button and opens the interest
// dialog.
func Interest(svc interests.Service, logg *logger.Logger) http.HandlerFunc {
	return postActionHandler(logg, func(r *http.Request) error {
		action, err := parsePostAction(r)
		if err != nil {
			return err
		}
		return svc.StartInterest(r.Context(), action)
	})
}

// SaveInterest handles the interest dialog submission.
func SaveInterest(svc interests.Service, logg *logger.Logger) http.HandlerFunc {
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

// InterestList handles the manage panel's List interested button.
func InterestList(svc interests.Service, logg *logger.Logger) http.HandlerFunc {
	return postActionHandler(logg, func(r *http.Request) error {
		action, err := parsePostAction(r)
		if err != nil {
			return err
		}
		return svc.ListInterested(r.Context(), action)
	})
}

// MarkPayed handles the payment message's Mark Payed button.
func MarkPayed(svc interests.Service, logg *logger.Logger) http.HandlerFunc {
	return postActionHandler(logg, func(r *http.Request) error {
		action, err := parsePostAction(r)
		if err != nil {
			return err
		}
		return svc.MarkPayed(r.Context(), action)
	})
}

// ConfirmPayment handles the organizer's Confirm button on a payment claim.
func ConfirmPayment(svc interests.Service, logg *logger.Logger) http.HandlerFunc {
	return postActionHandler(logg, func(r *http.Request) error {
		action, err := parsePostAction(r)
		if err != nil {
			return err
		}
		return svc.ConfirmPayment(r.Context(), action)
	})
}

// RejectPayment handles the organizer's Reject button on a payment claim.
func RejectPayment(svc interests.Service, logg *logger.Logger) http.HandlerFunc {
	return postActionHandler(logg, func(r *http.Request) error {
		action, err := parsePostAction(r)
		if err != nil {
			return err
		}
		return svc.RejectPayment(r.Context(), action)
	})
}
