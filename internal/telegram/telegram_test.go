package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "copperx-bot/internal/chat/domain"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
	sendErrs []error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		return tgbotapi.Message{}, err
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID},
			Chat: &tgbotapi.Chat{ID: userID + 1000},
			Text: text,
		},
	}
}

func callbackUpdate(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 2,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb-1",
			From:    &tgbotapi.User{ID: userID},
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: userID + 1000}},
			Data:    data,
		},
	}
}

func TestToEvent(t *testing.T) {
	ev, ok := ToEvent(textUpdate(5, "/start@copperx_bot"))
	require.True(t, ok)
	assert.Equal(t, int64(5), ev.Identity)
	assert.Equal(t, int64(1005), ev.ChatID)
	assert.Equal(t, chat.Command{Name: "start"}, ev.Payload)

	ev, ok = ToEvent(textUpdate(5, "user@example.com"))
	require.True(t, ok)
	assert.Equal(t, chat.TextInput{Text: "user@example.com"}, ev.Payload)

	ev, ok = ToEvent(callbackUpdate(6, "menu"))
	require.True(t, ok)
	assert.Equal(t, int64(1006), ev.ChatID)
	assert.Equal(t, chat.ButtonPress{Data: "menu", CallbackID: "cb-1"}, ev.Payload)

	noMessage := callbackUpdate(7, "menu")
	noMessage.CallbackQuery.Message = nil
	ev, ok = ToEvent(noMessage)
	require.True(t, ok)
	assert.Equal(t, int64(7), ev.ChatID)

	_, ok = ToEvent(tgbotapi.Update{UpdateID: 3})
	assert.False(t, ok)
	_, ok = ToEvent(textUpdate(5, ""))
	assert.False(t, ok, "stickers and photos carry no text")
}

func TestNewMessage(t *testing.T) {
	r := chat.Reply{
		Text:     "*hi*",
		Markdown: true,
		Options: [][]chat.Option{
			{{Label: "Try Again", Key: "login"}, {Label: "Back to Menu", Key: "menu"}},
			{{Label: "Help", Key: "help"}},
		},
	}
	msg := NewMessage(42, r)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "*hi*", msg.Text)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)

	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 2)
	require.Len(t, kb.InlineKeyboard[0], 2)
	assert.Equal(t, "Try Again", kb.InlineKeyboard[0][0].Text)
	require.NotNil(t, kb.InlineKeyboard[0][1].CallbackData)
	assert.Equal(t, "menu", *kb.InlineKeyboard[0][1].CallbackData)

	plain := NewMessage(42, chat.Text("plain"))
	assert.Empty(t, plain.ParseMode)
	assert.Nil(t, plain.ReplyMarkup)
}

func TestBot_HandleUpdate(t *testing.T) {
	api := &fakeAPI{}
	var got chat.Event
	h := chat.HandlerFunc(func(ctx context.Context, ev chat.Event) []chat.Reply {
		got = ev
		return []chat.Reply{chat.Text("one"), chat.Text(""), chat.Text("two")}
	})
	NewBot(api, h).HandleUpdate(context.Background(), callbackUpdate(9, "check_balance"))

	assert.Equal(t, chat.ButtonPress{Data: "check_balance", CallbackID: "cb-1"}, got.Payload)
	require.Len(t, api.requests, 1)
	cb, ok := api.requests[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "cb-1", cb.CallbackQueryID)

	require.Len(t, api.sent, 2, "empty replies are skipped")
	assert.Equal(t, "one", api.sent[0].Text)
	assert.Equal(t, "two", api.sent[1].Text)
	assert.Equal(t, int64(1009), api.sent[0].ChatID)
}

func TestBot_SendMarkdownFallback(t *testing.T) {
	api := &fakeAPI{sendErrs: []error{&tgbotapi.Error{Code: 400, Message: "Bad Request: can't parse entities: Can't find end of the entity"}}}
	b := NewBot(api, nil)
	err := b.Send(context.Background(), 1, chat.Markdown("bad_markdown *"))
	require.NoError(t, err)
	require.Len(t, api.sent, 2)
	assert.Equal(t, tgbotapi.ModeMarkdown, api.sent[0].ParseMode)
	assert.Empty(t, api.sent[1].ParseMode)
}

func TestBot_SendOtherErrorNotRetried(t *testing.T) {
	api := &fakeAPI{sendErrs: []error{errors.New("network down")}}
	err := NewBot(api, nil).Send(context.Background(), 1, chat.Markdown("*x*"))
	require.Error(t, err)
	assert.Len(t, api.sent, 1)
}

type recordingHandler struct {
	mu     sync.Mutex
	events []chat.Event
	done   chan struct{}
	want   int
}

func (r *recordingHandler) HandleEvent(ctx context.Context, ev chat.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	if len(r.events) == r.want {
		close(r.done)
	}
}

func TestDispatcher_PreservesOrderPerIdentity(t *testing.T) {
	rec := &recordingHandler{done: make(chan struct{}), want: 20}
	d := NewDispatcher(rec, 4, 4)
	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- d.Run(ctx) }()

	for i := 0; i < 10; i++ {
		require.True(t, d.Submit(ctx, textUpdate(1, string(rune('a'+i)))))
		require.True(t, d.Submit(ctx, textUpdate(2, string(rune('a'+i)))))
	}
	select {
	case <-rec.done:
	case <-time.After(5 * time.Second):
		t.Fatal("events not handled")
	}
	cancel()
	require.NoError(t, <-runDone)

	var seq1, seq2 strings.Builder
	for _, ev := range rec.events {
		text := ev.Payload.(chat.TextInput).Text
		if ev.Identity == 1 {
			seq1.WriteString(text)
		} else {
			seq2.WriteString(text)
		}
	}
	assert.Equal(t, "abcdefghij", seq1.String())
	assert.Equal(t, "abcdefghij", seq2.String())
}

func TestDispatcher_DropsUnsupported(t *testing.T) {
	d := NewDispatcher(&recordingHandler{}, 1, 1)
	assert.False(t, d.Submit(context.Background(), tgbotapi.Update{UpdateID: 1}))
}

type fakeSource struct {
	ch      chan tgbotapi.Update
	stopped bool
	cfg     tgbotapi.UpdateConfig
}

func (f *fakeSource) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	f.cfg = cfg
	return f.ch
}

func (f *fakeSource) StopReceivingUpdates() { f.stopped = true }

func TestPoll(t *testing.T) {
	rec := &recordingHandler{done: make(chan struct{}), want: 1}
	d := NewDispatcher(rec, 1, 4)
	src := &fakeSource{ch: make(chan tgbotapi.Update, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	src.ch <- textUpdate(3, "/menu")
	pollDone := make(chan error, 1)
	go func() { pollDone <- Poll(ctx, src, d) }()

	select {
	case <-rec.done:
	case <-time.After(5 * time.Second):
		t.Fatal("polled update not handled")
	}
	cancel()
	require.NoError(t, <-pollDone)
	assert.True(t, src.stopped)
	assert.Equal(t, pollTimeoutSeconds, src.cfg.Timeout)
}

func TestWebhookPath(t *testing.T) {
	assert.Equal(t, "/webhook", WebhookPath(""))
	assert.Equal(t, "/webhook/s3cret", WebhookPath("/s3cret/"))
}

func TestRegisterWebhook(t *testing.T) {
	api := &fakeAPI{}
	require.NoError(t, RegisterWebhook(api, "https://bot.example.com/", "s3cret"))
	require.Len(t, api.requests, 1)
	wh, ok := api.requests[0].(tgbotapi.WebhookConfig)
	require.True(t, ok)
	require.NotNil(t, wh.URL)
	assert.Equal(t, "https://bot.example.com/webhook/s3cret", wh.URL.String())

	require.NoError(t, DeleteWebhook(api))
	assert.Len(t, api.requests, 2)
}

func TestRouter_Webhook(t *testing.T) {
	rec := &recordingHandler{done: make(chan struct{}), want: 1}
	d := NewDispatcher(rec, 1, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	srv := httptest.NewServer(NewRouter(d, "s3cret", nil))
	defer srv.Close()

	body := `{"update_id":10,"message":{"message_id":1,"date":0,"from":{"id":11,"is_bot":false,"first_name":"A"},"chat":{"id":11,"type":"private"},"text":"/help"}}`

	resp, err := http.Post(srv.URL+"/webhook/wrong", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/webhook/s3cret", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/webhook/s3cret", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case <-rec.done:
	case <-time.After(5 * time.Second):
		t.Fatal("webhook update not handled")
	}
	assert.Equal(t, chat.Command{Name: "help"}, rec.events[0].Payload)
}

func TestRouter_Healthz(t *testing.T) {
	var readyErr error
	srv := httptest.NewServer(NewRouter(nil, "", func(context.Context) error { return readyErr }))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	readyErr = errors.New("db down")
	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/webhook", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, http.StatusOK, resp.StatusCode, "no webhook route in polling mode")
}
