package mattermost

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sk2andy/mattermost-buy-bot/pkg/config"
	pkgerrors "github.com/sk2andy/mattermost-buy-bot/pkg/errors"
	"github.com/sk2andy/mattermost-buy-bot/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), config.MattermostConfig{
		URL:       server.URL,
		Token:     "test-token",
		BotUserID: "bot-user",
		Timeout:   5 * time.Second,
	}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, server
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(context.Background(), config.MattermostConfig{Token: "t", BotUserID: "b"}, nil)
	if err == nil {
		t.Fatal("expected error without url")
	}
	_, err = NewClient(context.Background(), config.MattermostConfig{URL: "https://chat", BotUserID: "b"}, nil)
	if err == nil {
		t.Fatal("expected error without token")
	}
	_, err = NewClient(context.Background(), config.MattermostConfig{URL: "https://chat", Token: "t"}, nil)
	if err == nil {
		t.Fatal("expected error without bot user id")
	}
}

func TestPostMessagePutsAttachmentsIntoProps(t *testing.T) {
	var captured map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v4/posts" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Write([]byte(`{}`))
	}))

	msg := NewMessage().Text("hello").Attachment(func(a *AttachmentBuilder) {
		a.Text("attached")
	}).Build()

	if err := client.PostMessage(context.Background(), "chan-1", msg); err != nil {
		t.Fatalf("post message: %v", err)
	}
	if captured["channel_id"] != "chan-1" || captured["message"] != "hello" {
		t.Fatalf("unexpected body %v", captured)
	}
	props, ok := captured["props"].(map[string]any)
	if !ok {
		t.Fatalf("expected props map, got %v", captured["props"])
	}
	if _, ok := props["attachments"]; !ok {
		t.Fatal("expected attachments inside props")
	}
}

func TestSendDirectMessageOpensDirectChannelFirst(t *testing.T) {
	var paths []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/api/v4/channels/direct":
			var members []string
			if err := json.NewDecoder(r.Body).Decode(&members); err != nil {
				t.Fatalf("decode members: %v", err)
			}
			if len(members) != 2 || members[0] != "user-1" || members[1] != "bot-user" {
				t.Fatalf("unexpected members %v", members)
			}
			w.Write([]byte(`{"id":"dm-chan"}`))
		case "/api/v4/posts":
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if body["channel_id"] != "dm-chan" {
				t.Fatalf("expected post into dm channel, got %v", body["channel_id"])
			}
			w.Write([]byte(`{}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))

	err := client.SendDirectMessage(context.Background(), "user-1", NewMessage().Text("hi").Build())
	if err != nil {
		t.Fatalf("send dm: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 calls, got %v", paths)
	}
}

func TestRemoveOwnReactionsOnlyDeletesBotReactions(t *testing.T) {
	var deleted []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.Write([]byte(`[
				{"user_id":"bot-user","post_id":"post-1","emoji_name":"white_check_mark"},
				{"user_id":"someone-else","post_id":"post-1","emoji_name":"x"},
				{"user_id":"bot-user","post_id":"post-1","emoji_name":"x"}
			]`))
		case r.Method == http.MethodDelete:
			deleted = append(deleted, r.URL.Path)
			w.Write([]byte(`{"status":"OK"}`))
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	if err := client.RemoveOwnReactions(context.Background(), "post-1"); err != nil {
		t.Fatalf("remove reactions: %v", err)
	}
	if len(deleted) != 2 {
		t.Fatalf("expected 2 deletions, got %v", deleted)
	}
	if deleted[0] != "/api/v4/users/bot-user/posts/post-1/reactions/white_check_mark" {
		t.Fatalf("unexpected delete path %s", deleted[0])
	}
}

func TestGetUserDecodesProfile(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v4/users/user-1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"id":"user-1","username":"alice"}`))
	}))

	user, err := client.GetUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected username %q", user.Username)
	}
}

func TestRequestMapsNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.GetUser(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %s", pkgerrors.As(err).Code())
	}
}
