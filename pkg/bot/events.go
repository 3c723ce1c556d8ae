// Package bot classifies inbound chat events and dispatches them to
// exactly one handler.
package bot

import "context"

// Kind tags the shape of one inbound event.
type Kind int

const (
	KindCommand Kind = iota
	KindCallback
	KindText
	KindPhoto
	KindDocument
	KindOther
)

// InboundEvent is one classified chat-platform notification. It is
// produced by a transport adapter and consumed exactly once by the Router.
type InboundEvent struct {
	Kind   Kind
	ChatID int64
	UserID int64

	// Command name without the leading slash, for KindCommand.
	Command string

	// Callback query fields, for KindCallback.
	CallbackID string
	Payload    string

	// Message body, for KindText.
	Text string
}

// Button is one selectable menu option attached to an outbound message.
type Button struct {
	Label string
	Data  string
}

// Responder is the outbound side of the transport: sending messages with
// optional button menus and acknowledging pressed buttons.
type Responder interface {
	SendMessage(ctx context.Context, chatID int64, text string, menu []Button) error
	AnswerCallback(ctx context.Context, callbackID string, toast string) error
}

// Handler processes one classified inbound event.
type Handler func(ctx context.Context, event InboundEvent, reply Responder) error

// Adapter bridges one external transport (for example Telegram) into the bot.
type Adapter interface {
	Name() string
	Run(ctx context.Context, handler Handler) error
}
