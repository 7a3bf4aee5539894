package telegram_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"marquee/internal/delivery"
	"marquee/internal/telegram"
)

const testToken = "123:abc"

type recordedRequest struct {
	method  string
	payload map[string]any
}

// botServer fakes the Bot API: it records every call and serves canned
// responses per method.
type botServer struct {
	mu        sync.Mutex
	requests  []recordedRequest
	responses map[string]string
}

func newBotServer() *botServer {
	return &botServer{responses: map[string]string{}}
}

func (b *botServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefix := "/bot" + testToken + "/"
		if !strings.HasPrefix(r.URL.Path, prefix) {
			t.Errorf("request missing token prefix: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		method := strings.TrimPrefix(r.URL.Path, prefix)

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding %s payload: %v", method, err)
		}
		b.mu.Lock()
		b.requests = append(b.requests, recordedRequest{method: method, payload: payload})
		response, ok := b.responses[method]
		b.mu.Unlock()

		if !ok {
			response = `{"ok":true,"result":true}`
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, response)
	}
}

func (b *botServer) last(t *testing.T) recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		t.Fatal("no requests recorded")
	}
	return b.requests[len(b.requests)-1]
}

func newTestClient(t *testing.T, server *botServer) *telegram.Client {
	ts := httptest.NewServer(server.handler(t))
	t.Cleanup(ts.Close)

	client, err := telegram.NewClient(testToken, ts.URL,
		telegram.WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestSendMediaCapturesLargestFileID(t *testing.T) {
	server := newBotServer()
	server.responses["sendPhoto"] = `{"ok":true,"result":{
		"message_id":55,"chat":{"id":42},
		"photo":[
			{"file_id":"small","width":90,"height":135},
			{"file_id":"big","width":780,"height":1170},
			{"file_id":"mid","width":320,"height":480}
		]}}`
	client := newTestClient(t, server)

	ref, handle, err := client.SendMedia(context.Background(),
		delivery.Destination{ChatID: 42}, "https://img/x.jpg", "caption", delivery.Keyboard{})
	if err != nil {
		t.Fatalf("SendMedia failed: %v", err)
	}
	if handle != "big" {
		t.Fatalf("expected largest rendition's file_id, got %q", handle)
	}
	if ref.ChatID != 42 || ref.MessageID != 55 {
		t.Fatalf("unexpected message ref: %+v", ref)
	}

	req := server.last(t)
	if req.method != "sendPhoto" {
		t.Fatalf("expected sendPhoto, got %s", req.method)
	}
	if req.payload["photo"] != "https://img/x.jpg" {
		t.Fatalf("unexpected photo payload: %v", req.payload["photo"])
	}
	if _, present := req.payload["reply_markup"]; present {
		t.Fatal("empty keyboard must omit reply_markup")
	}
}

func TestSendTextCarriesKeyboard(t *testing.T) {
	server := newBotServer()
	server.responses["sendMessage"] = `{"ok":true,"result":{"message_id":7,"chat":{"id":1}}}`
	client := newTestClient(t, server)

	nav := delivery.Keyboard{Rows: [][]delivery.Button{{
		{Label: "➡️", Data: "m1.key.1"},
		{Label: "🎬 Trailer", URL: "https://youtube.com/watch?v=x"},
	}}}
	if _, err := client.SendText(context.Background(), delivery.Destination{ChatID: 1}, "hello", nav); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}

	req := server.last(t)
	markup, ok := req.payload["reply_markup"].(map[string]any)
	if !ok {
		t.Fatalf("reply_markup missing: %v", req.payload)
	}
	rows := markup["inline_keyboard"].([]any)
	buttons := rows[0].([]any)
	first := buttons[0].(map[string]any)
	if first["callback_data"] != "m1.key.1" {
		t.Fatalf("callback data lost: %v", first)
	}
	second := buttons[1].(map[string]any)
	if second["url"] != "https://youtube.com/watch?v=x" {
		t.Fatalf("url button lost: %v", second)
	}
	if _, present := second["callback_data"]; present {
		t.Fatal("url button must not carry callback_data")
	}
}

func TestEditMediaPayloadShape(t *testing.T) {
	server := newBotServer()
	client := newTestClient(t, server)

	ref := delivery.MessageRef{ChatID: 9, MessageID: 12}
	if err := client.EditMedia(context.Background(), ref, "file-id-1", "new caption", delivery.Keyboard{}); err != nil {
		t.Fatalf("EditMedia failed: %v", err)
	}

	req := server.last(t)
	if req.method != "editMessageMedia" {
		t.Fatalf("expected editMessageMedia, got %s", req.method)
	}
	media := req.payload["media"].(map[string]any)
	if media["type"] != "photo" || media["media"] != "file-id-1" {
		t.Fatalf("unexpected media object: %v", media)
	}
	if media["caption"] != "new caption" {
		t.Fatalf("caption lost: %v", media)
	}
}

func TestAPIErrorSurfacesDescription(t *testing.T) {
	server := newBotServer()
	server.responses["sendPhoto"] = `{"ok":false,"error_code":400,"description":"Bad Request: wrong file identifier"}`
	client := newTestClient(t, server)

	_, _, err := client.SendMedia(context.Background(),
		delivery.Destination{ChatID: 1}, "bogus", "caption", delivery.Keyboard{})
	if err == nil {
		t.Fatal("expected an error from a non-ok response")
	}
	if !strings.Contains(err.Error(), "wrong file identifier") {
		t.Fatalf("error should carry the API description, got %v", err)
	}
	if !strings.Contains(err.Error(), "400") {
		t.Fatalf("error should carry the API code, got %v", err)
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := telegram.NewClient("  ", ""); err == nil {
		t.Fatal("expected an error for an empty token")
	}
}

func TestPollerDispatchesCommandsAndCallbacks(t *testing.T) {
	server := newBotServer()
	server.responses["getUpdates"] = `{"ok":true,"result":[
		{"update_id":10,"message":{"message_id":1,"chat":{"id":5},"text":"/start@marquee_bot"}},
		{"update_id":11,"message":{"message_id":2,"chat":{"id":5},"text":"just chatting"}},
		{"update_id":12,"callback_query":{"id":"cb1","data":"m1.key.2",
			"message":{"message_id":3,"chat":{"id":5}}}}
	]}`
	client := newTestClient(t, server)
	poller := telegram.NewPoller(client, 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var commands []telegram.Command
	var callbacks []telegram.Callback
	events := telegram.Events{
		OnCommand: func(_ context.Context, cmd telegram.Command) {
			mu.Lock()
			commands = append(commands, cmd)
			mu.Unlock()
		},
		OnCallback: func(_ context.Context, cb telegram.Callback) {
			mu.Lock()
			callbacks = append(callbacks, cb)
			mu.Unlock()
			cancel()
		},
	}

	errCh := make(chan error, 1)
	go func() { errCh <- poller.Run(ctx, events) }()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("poller exited with %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not process updates in time")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(commands) != 1 || commands[0].Name != "start" || commands[0].ChatID != 5 {
		t.Fatalf("unexpected commands: %+v", commands)
	}
	if len(callbacks) != 1 || callbacks[0].Data != "m1.key.2" || callbacks[0].Message.MessageID != 3 {
		t.Fatalf("unexpected callbacks: %+v", callbacks)
	}

	// The next fetch must acknowledge past updates via the offset.
	server.mu.Lock()
	defer server.mu.Unlock()
	for _, req := range server.requests {
		if req.method != "getUpdates" {
			continue
		}
		if offset, ok := req.payload["offset"].(float64); ok && offset != 0 {
			if int64(offset) != 13 {
				t.Fatalf("expected offset 13 after update 12, got %v", offset)
			}
		}
	}
}
