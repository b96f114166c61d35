package mattermost

import (
	"encoding/json"
	"testing"
)

func TestDialogBuilderAssemblesElementsInOrder(t *testing.T) {
	dialog := NewDialog("create-buy-dialog", "Create a Buy").
		TextElement(DialogElement{DisplayName: "Name", Name: "buy_name"}).
		SelectElement(DialogElement{DisplayName: "Unit", Name: "unit", Options: []SelectOption{{Text: "mg", Value: "mg"}}}).
		BoolElement(DialogElement{DisplayName: "Half shares", Name: "half_shares", Optional: true}).
		SubmitLabel("Create").
		State(DialogState{ChannelID: "chan-1"}).
		Build()

	if len(dialog.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(dialog.Elements))
	}
	if dialog.Elements[0].Type != "text" || dialog.Elements[1].Type != "select" || dialog.Elements[2].Type != "bool" {
		t.Fatalf("unexpected element types: %+v", dialog.Elements)
	}
	if dialog.SubmitLabel != "Create" {
		t.Fatalf("unexpected submit label %q", dialog.SubmitLabel)
	}

	state, err := DecodeDialogState(dialog.State)
	if err != nil {
		t.Fatalf("state should round-trip: %v", err)
	}
	if state.ChannelID != "chan-1" {
		t.Fatalf("unexpected channel in state: %q", state.ChannelID)
	}
}

func TestMessageBuilderButtonsCarryContext(t *testing.T) {
	msg := NewMessage().
		Text("Are you interested?").
		Attachment(func(a *AttachmentBuilder) {
			a.Text("Click below").
				Button("interest", "Yes", "https://bot.example.com/interest", map[string]any{
					"channel_id": "chan-1",
					"buy_id":     "buy-1",
					"user_id":    "user-1",
				})
		}).
		Build()

	if len(msg.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(msg.Attachments))
	}
	action := msg.Attachments[0].Actions[0]
	if action.Type != "button" {
		t.Fatalf("unexpected action type %q", action.Type)
	}
	if action.Integration.URL != "https://bot.example.com/interest" {
		t.Fatalf("unexpected integration url %q", action.Integration.URL)
	}
	for _, key := range []string{"channel_id", "buy_id", "user_id"} {
		if _, ok := action.Integration.Context[key]; !ok {
			t.Fatalf("expected context key %q", key)
		}
	}
}

func TestMessageJSONShapeMatchesIntegrationAPI(t *testing.T) {
	msg := NewMessage().
		Attachment(func(a *AttachmentBuilder) {
			a.Button("payed", "Mark Payed", "https://bot.example.com/mark-payed", nil)
		}).
		Build()

	raw, err := json.Marshal(msg.Attachments[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	actions, ok := decoded["actions"].([]any)
	if !ok || len(actions) != 1 {
		t.Fatalf("expected actions array, got %v", decoded["actions"])
	}
	action := actions[0].(map[string]any)
	if _, ok := action["integration"]; !ok {
		t.Fatal("expected integration key on action")
	}
}

func TestBuildCopiesDoNotAlias(t *testing.T) {
	builder := NewDialog("d", "t").TextElement(DialogElement{Name: "a"})
	first := builder.Build()
	builder.TextElement(DialogElement{Name: "b"})

	if len(first.Elements) != 1 {
		t.Fatalf("expected built dialog to be isolated from later edits, got %d elements", len(first.Elements))
	}
}
