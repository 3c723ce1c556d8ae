package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"factlens/pkg/analysis"
	"factlens/pkg/locale"
)

type fakeStore struct {
	prefs  map[int64]string
	getErr error
	setErr error

	setCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{prefs: map[int64]string{}}
}

func (s *fakeStore) Set(_ context.Context, userID int64, lang string) error {
	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	s.prefs[userID] = lang
	return nil
}

func (s *fakeStore) Get(_ context.Context, userID int64) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	lang, ok := s.prefs[userID]
	return lang, ok, nil
}

type fakeAnalyzer struct {
	result   analysis.Result
	requests []analysis.Request
}

func (a *fakeAnalyzer) Analyze(_ context.Context, req analysis.Request) analysis.Result {
	a.requests = append(a.requests, req)
	return a.result
}

type sentMessage struct {
	chatID int64
	text   string
	menu   []Button
}

type callbackAnswer struct {
	callbackID string
	toast      string
}

type recordingResponder struct {
	sent    []sentMessage
	answers []callbackAnswer
}

func (r *recordingResponder) SendMessage(_ context.Context, chatID int64, text string, menu []Button) error {
	r.sent = append(r.sent, sentMessage{chatID: chatID, text: text, menu: menu})
	return nil
}

func (r *recordingResponder) AnswerCallback(_ context.Context, callbackID string, toast string) error {
	r.answers = append(r.answers, callbackAnswer{callbackID: callbackID, toast: toast})
	return nil
}

func newTestRouter(t *testing.T, store PreferenceStore, analyzer Analyzer) *Router {
	t.Helper()

	router, err := NewRouter(store, analyzer, nil, nil)
	if err != nil {
		t.Fatalf("NewRouter error: %v", err)
	}
	return router
}

func TestStartCommandRendersLanguageMenu(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeAnalyzer{})
	reply := &recordingResponder{}

	err := router.Handle(context.Background(), InboundEvent{Kind: KindCommand, Command: "start", ChatID: 10, UserID: 10}, reply)
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if len(reply.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(reply.sent))
	}
	if reply.sent[0].text != welcomeText {
		t.Fatalf("text = %q, want welcome", reply.sent[0].text)
	}

	codes := locale.Codes()
	menu := reply.sent[0].menu
	if len(menu) != len(codes) {
		t.Fatalf("menu has %d buttons, want %d", len(menu), len(codes))
	}
	for i, code := range codes {
		if menu[i].Data != CallbackSetLangPrefix+code {
			t.Fatalf("menu[%d].Data = %q, want %q", i, menu[i].Data, CallbackSetLangPrefix+code)
		}
	}
}

func TestSetLanguageStoresPreferenceAndGreets(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(t, store, &fakeAnalyzer{})
	reply := &recordingResponder{}

	event := InboundEvent{Kind: KindCallback, ChatID: 10, UserID: 10, CallbackID: "cb-1", Payload: "setlang:ru"}
	if err := router.Handle(context.Background(), event, reply); err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if got := store.prefs[10]; got != "ru" {
		t.Fatalf("stored lang = %q, want %q", got, "ru")
	}

	if len(reply.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(reply.sent))
	}
	ru, _ := locale.Get("ru")
	if reply.sent[0].text != ru.Greeting {
		t.Fatalf("text = %q, want Russian greeting", reply.sent[0].text)
	}
	if len(reply.sent[0].menu) != len(MainMenu()) {
		t.Fatalf("menu has %d buttons, want main menu", len(reply.sent[0].menu))
	}

	if len(reply.answers) != 1 || reply.answers[0].callbackID != "cb-1" || reply.answers[0].toast != "" {
		t.Fatalf("answers = %+v, want one empty answer for cb-1", reply.answers)
	}
}

func TestSetLanguageRejectsUnsupportedCode(t *testing.T) {
	store := newFakeStore()
	store.prefs[10] = "en"
	router := newTestRouter(t, store, &fakeAnalyzer{})
	reply := &recordingResponder{}

	event := InboundEvent{Kind: KindCallback, ChatID: 10, UserID: 10, CallbackID: "cb-2", Payload: "setlang:xx"}
	if err := router.Handle(context.Background(), event, reply); err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if store.setCalls != 0 {
		t.Fatal("rejected selection must not touch the store")
	}
	if got := store.prefs[10]; got != "en" {
		t.Fatalf("stored lang changed to %q", got)
	}
	if len(reply.sent) != 0 {
		t.Fatalf("sent %d messages, want 0", len(reply.sent))
	}
	if len(reply.answers) != 1 || reply.answers[0].toast != invalidLangToast {
		t.Fatalf("answers = %+v, want validation toast", reply.answers)
	}
}

func TestChangeLanguageRerendersMenu(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeAnalyzer{})
	reply := &recordingResponder{}

	event := InboundEvent{Kind: KindCallback, ChatID: 10, UserID: 10, CallbackID: "cb-3", Payload: CallbackChangeLang}
	if err := router.Handle(context.Background(), event, reply); err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if len(reply.sent) != 1 || reply.sent[0].text != chooseLangText {
		t.Fatalf("sent = %+v, want language prompt", reply.sent)
	}
	if len(reply.sent[0].menu) != len(locale.Codes()) {
		t.Fatalf("menu has %d buttons, want language menu", len(reply.sent[0].menu))
	}
}

func TestHelpUsesStoredLanguage(t *testing.T) {
	store := newFakeStore()
	store.prefs[10] = "ru"
	router := newTestRouter(t, store, &fakeAnalyzer{})
	reply := &recordingResponder{}

	event := InboundEvent{Kind: KindCallback, ChatID: 10, UserID: 10, CallbackID: "cb-4", Payload: CallbackHelp}
	if err := router.Handle(context.Background(), event, reply); err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	ru, _ := locale.Get("ru")
	if len(reply.sent) != 1 || reply.sent[0].text != ru.Help {
		t.Fatalf("sent = %+v, want Russian help text %q", reply.sent, ru.Help)
	}
}

func TestHelpDefaultsWithoutPreference(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeAnalyzer{})
	reply := &recordingResponder{}

	event := InboundEvent{Kind: KindCallback, ChatID: 10, UserID: 10, CallbackID: "cb-5", Payload: CallbackHelp}
	if err := router.Handle(context.Background(), event, reply); err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if len(reply.sent) != 1 || reply.sent[0].text != locale.Default().Help {
		t.Fatalf("sent = %+v, want default help text", reply.sent)
	}
}

func TestTextMessageRunsAnalysisPipeline(t *testing.T) {
	store := newFakeStore()
	store.prefs[10] = "en"
	analyzer := &fakeAnalyzer{result: analysis.Result{Text: "likely false"}}
	router := newTestRouter(t, store, analyzer)
	reply := &recordingResponder{}

	event := InboundEvent{Kind: KindText, ChatID: 10, UserID: 10, Text: "Vaccines contain microchips"}
	if err := router.Handle(context.Background(), event, reply); err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if len(analyzer.requests) != 1 {
		t.Fatalf("analyzer called %d times, want 1", len(analyzer.requests))
	}
	req := analyzer.requests[0]
	if req.Language != "en" || req.Content != "Vaccines contain microchips" {
		t.Fatalf("request = %+v", req)
	}

	if len(reply.sent) != 2 {
		t.Fatalf("sent %d messages, want processing ack + result", len(reply.sent))
	}
	en, _ := locale.Get("en")
	if reply.sent[0].text != en.Processing {
		t.Fatalf("first message = %q, want processing ack", reply.sent[0].text)
	}
	if !strings.HasPrefix(reply.sent[1].text, resultHeading) {
		t.Fatalf("result message = %q, want heading prefix", reply.sent[1].text)
	}
	if !strings.HasSuffix(reply.sent[1].text, "likely false") {
		t.Fatalf("result message = %q, want analysis text", reply.sent[1].text)
	}
}

func TestTextMessageAnalysisFailureStillReplies(t *testing.T) {
	store := newFakeStore()
	analyzer := &fakeAnalyzer{result: analysis.Result{ErrorMessage: "OpenAI API xatosi: timeout"}}
	router := newTestRouter(t, store, analyzer)
	reply := &recordingResponder{}

	event := InboundEvent{Kind: KindText, ChatID: 10, UserID: 10, Text: "claim"}
	if err := router.Handle(context.Background(), event, reply); err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if len(reply.sent) != 2 {
		t.Fatalf("sent %d messages, want processing ack + diagnostic", len(reply.sent))
	}
	if !strings.Contains(reply.sent[1].text, "timeout") {
		t.Fatalf("result message = %q, want diagnostic", reply.sent[1].text)
	}
	if store.setCalls != 0 {
		t.Fatal("analysis failure must not touch the preference store")
	}
}

func TestTextMessageStorageErrorDegradesToDefault(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("database is locked")
	analyzer := &fakeAnalyzer{result: analysis.Result{Text: "ok"}}
	router := newTestRouter(t, store, analyzer)
	reply := &recordingResponder{}

	event := InboundEvent{Kind: KindText, ChatID: 10, UserID: 10, Text: "claim"}
	if err := router.Handle(context.Background(), event, reply); err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if len(analyzer.requests) != 1 || analyzer.requests[0].Language != locale.DefaultCode {
		t.Fatalf("requests = %+v, want default language", analyzer.requests)
	}
	for _, msg := range reply.sent {
		if strings.Contains(msg.text, "database is locked") {
			t.Fatalf("raw storage error leaked to user: %q", msg.text)
		}
	}
}

func TestTextMessageUnsupportedStoredLanguageDegradesToDefault(t *testing.T) {
	store := newFakeStore()
	store.prefs[10] = "xx"
	analyzer := &fakeAnalyzer{result: analysis.Result{Text: "ok"}}
	router := newTestRouter(t, store, analyzer)
	reply := &recordingResponder{}

	event := InboundEvent{Kind: KindText, ChatID: 10, UserID: 10, Text: "claim"}
	if err := router.Handle(context.Background(), event, reply); err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if len(analyzer.requests) != 1 || analyzer.requests[0].Language != locale.DefaultCode {
		t.Fatalf("requests = %+v, want default language", analyzer.requests)
	}
	if len(reply.sent) == 0 || reply.sent[0].text != locale.Default().Processing {
		t.Fatalf("sent = %+v, want default processing ack first", reply.sent)
	}
}

func TestMediaMessagesAreNoOps(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	router := newTestRouter(t, newFakeStore(), analyzer)
	reply := &recordingResponder{}

	for _, kind := range []Kind{KindPhoto, KindDocument} {
		if err := router.Handle(context.Background(), InboundEvent{Kind: kind, ChatID: 10, UserID: 10}, reply); err != nil {
			t.Fatalf("Handle error: %v", err)
		}
	}

	if len(reply.sent) != 0 || len(reply.answers) != 0 {
		t.Fatalf("media events produced replies: %+v %+v", reply.sent, reply.answers)
	}
	if len(analyzer.requests) != 0 {
		t.Fatal("media events must not trigger analysis")
	}
}

func TestUnrecognizedEventGetsGuidance(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeAnalyzer{})
	reply := &recordingResponder{}

	if err := router.Handle(context.Background(), InboundEvent{Kind: KindOther, ChatID: 10, UserID: 10}, reply); err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if len(reply.sent) != 1 || reply.sent[0].text != guidanceText {
		t.Fatalf("sent = %+v, want one guidance message", reply.sent)
	}
}

func TestUnknownCallbackIsAcknowledgedOnce(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeAnalyzer{})
	reply := &recordingResponder{}

	event := InboundEvent{Kind: KindCallback, ChatID: 10, UserID: 10, CallbackID: "cb-9", Payload: "mystery"}
	if err := router.Handle(context.Background(), event, reply); err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if len(reply.sent) != 0 {
		t.Fatalf("sent = %+v, want none", reply.sent)
	}
	if len(reply.answers) != 1 || reply.answers[0].callbackID != "cb-9" {
		t.Fatalf("answers = %+v, want single ack", reply.answers)
	}
}

func TestNewRouterRequiresDependencies(t *testing.T) {
	if _, err := NewRouter(nil, &fakeAnalyzer{}, nil, nil); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := NewRouter(newFakeStore(), nil, nil, nil); err == nil {
		t.Fatal("expected error for nil analyzer")
	}
}
