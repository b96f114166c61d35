package mattermost

import (
	"testing"

	pkgerrors "github.com/sk2andy/mattermost-buy-bot/pkg/errors"
)

func TestDialogStateRoundTrip(t *testing.T) {
	state := DialogState{ChannelID: "chan-1", BuyID: "buy-1"}

	decoded, err := DecodeDialogState(state.Encode())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded != state {
		t.Fatalf("expected %+v got %+v", state, decoded)
	}
}

func TestDialogStateOmitsEmptyBuyID(t *testing.T) {
	encoded := DialogState{ChannelID: "chan-1"}.Encode()
	decoded, err := DecodeDialogState(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.BuyID != "" {
		t.Fatalf("expected empty buy id, got %q", decoded.BuyID)
	}
}

func TestDecodeDialogStateRejectsGarbage(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"not json":    "buy-123",
		"missing ids": `{"buy_id":"b"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDialogState(raw)
			if err == nil {
				t.Fatalf("expected error for %q", raw)
			}
			if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation code, got %s", pkgerrors.As(err).Code())
			}
		})
	}
}
