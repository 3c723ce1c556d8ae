package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"factlens/pkg/analysis"
	"factlens/pkg/bus"
	"factlens/pkg/locale"
)

const (
	welcomeText      = "<b>Fake-xabarlarni tekshiruvchi botga xush kelibsiz!</b>\n\nTilni tanlang:"
	chooseLangText   = "Tilni tanlang:"
	invalidLangToast = "Noto'g'ri til."
	resultHeading    = "<b>🔎 Natija</b>\n\n"
	guidanceText     = "Iltimos matn, rasm yoki hujjat yuboring."
)

// PreferenceStore is the durable per-user language mapping the Router
// reads on every event and writes only through language selection.
type PreferenceStore interface {
	Set(ctx context.Context, userID int64, lang string) error
	Get(ctx context.Context, userID int64) (string, bool, error)
}

// Analyzer runs one fact-check request and always returns a displayable result.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) analysis.Result
}

// Router dispatches each inbound event to exactly one handler, chosen by
// event shape. User state is derived from the preference store, never held
// in memory.
type Router struct {
	store    PreferenceStore
	analyzer Analyzer
	events   *bus.Bus
	log      *slog.Logger
}

func NewRouter(store PreferenceStore, analyzer Analyzer, events *bus.Bus, log *slog.Logger) (*Router, error) {
	if store == nil {
		return nil, errors.New("preference store is required")
	}
	if analyzer == nil {
		return nil, errors.New("analyzer is required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		store:    store,
		analyzer: analyzer,
		events:   events,
		log:      log.With("component", "bot.router"),
	}, nil
}

// Handle runs the single handler matching the event shape.
func (r *Router) Handle(ctx context.Context, event InboundEvent, reply Responder) error {
	switch event.Kind {
	case KindCommand:
		return r.handleCommand(ctx, event, reply)
	case KindCallback:
		return r.handleCallback(ctx, event, reply)
	case KindText:
		return r.handleText(ctx, event, reply)
	case KindPhoto, KindDocument:
		// Media analysis is not implemented yet; photo and document
		// events are ignored.
		return nil
	default:
		return reply.SendMessage(ctx, event.ChatID, guidanceText, nil)
	}
}

func (r *Router) handleCommand(ctx context.Context, event InboundEvent, reply Responder) error {
	if event.Command == "start" {
		return reply.SendMessage(ctx, event.ChatID, welcomeText, LanguageMenu())
	}

	r.log.Debug("Unknown command", "command", event.Command, "chat_id", event.ChatID)
	return reply.SendMessage(ctx, event.ChatID, guidanceText, nil)
}

func (r *Router) handleCallback(ctx context.Context, event InboundEvent, reply Responder) error {
	switch {
	case strings.HasPrefix(event.Payload, CallbackSetLangPrefix):
		return r.handleSetLanguage(ctx, event, reply)
	case event.Payload == CallbackChangeLang:
		if err := reply.SendMessage(ctx, event.ChatID, chooseLangText, LanguageMenu()); err != nil {
			return err
		}
		return reply.AnswerCallback(ctx, event.CallbackID, "")
	case event.Payload == CallbackHelp:
		entry := r.languageEntry(ctx, event.UserID)
		if err := reply.SendMessage(ctx, event.ChatID, entry.Help, nil); err != nil {
			return err
		}
		return reply.AnswerCallback(ctx, event.CallbackID, "")
	default:
		r.log.Debug("Unhandled callback payload", "payload", event.Payload, "chat_id", event.ChatID)
		return reply.AnswerCallback(ctx, event.CallbackID, "")
	}
}

func (r *Router) handleSetLanguage(ctx context.Context, event InboundEvent, reply Responder) error {
	code := strings.TrimPrefix(event.Payload, CallbackSetLangPrefix)
	entry, ok := locale.Get(code)
	if !ok {
		// Rejected selection mutates nothing.
		return reply.AnswerCallback(ctx, event.CallbackID, invalidLangToast)
	}

	if err := r.store.Set(ctx, event.UserID, code); err != nil {
		// The reply flow continues; the preference just will not stick.
		r.log.Error("Failed to store language preference", "user_id", event.UserID, "lang", code, "error", err)
	} else {
		r.publish(ctx, bus.Event{Type: bus.EventLanguageSelected, ChatID: event.ChatID, Lang: code})
	}

	if err := reply.SendMessage(ctx, event.ChatID, entry.Greeting, MainMenu()); err != nil {
		return err
	}

	return reply.AnswerCallback(ctx, event.CallbackID, "")
}

func (r *Router) handleText(ctx context.Context, event InboundEvent, reply Responder) error {
	entry := r.languageEntry(ctx, event.UserID)

	// Liveness signal before the potentially slow model call.
	if err := reply.SendMessage(ctx, event.ChatID, entry.Processing, nil); err != nil {
		return err
	}

	r.publish(ctx, bus.Event{Type: bus.EventAnalysisStarted, ChatID: event.ChatID, Lang: entry.Code})

	result := r.analyzer.Analyze(ctx, analysis.Request{
		Language: entry.Code,
		Content:  strings.TrimSpace(event.Text),
	})

	text := result.Text
	if result.Failed() {
		text = result.ErrorMessage
		r.publish(ctx, bus.Event{Type: bus.EventAnalysisFailed, ChatID: event.ChatID, Lang: entry.Code, Error: result.ErrorMessage})
	} else {
		r.publish(ctx, bus.Event{Type: bus.EventAnalysisCompleted, ChatID: event.ChatID, Lang: entry.Code})
	}

	return reply.SendMessage(ctx, event.ChatID, resultHeading+text, nil)
}

// languageEntry resolves the user's stored language, degrading to the
// default on missing preference, storage failure, or an out-of-set value.
func (r *Router) languageEntry(ctx context.Context, userID int64) locale.Entry {
	lang, ok, err := r.store.Get(ctx, userID)
	if err != nil {
		r.log.Warn("Preference lookup failed, using default language", "user_id", userID, "error", err)
		return locale.Default()
	}
	if !ok {
		return locale.Default()
	}

	entry, ok := locale.Get(lang)
	if !ok {
		r.log.Warn("Stored language outside supported set, using default", "user_id", userID, "lang", lang)
		return locale.Default()
	}

	return entry
}

func (r *Router) publish(ctx context.Context, event bus.Event) {
	if r.events == nil {
		return
	}

	r.events.Publish(ctx, event)
}
