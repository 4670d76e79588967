package domain

import "time"

// EventKind classifies inbound chat events.
type EventKind string

const (
	EventCommand  EventKind = "command"
	EventText     EventKind = "text"
	EventCallback EventKind = "callback"
	EventMedia    EventKind = "media"
)

// Event is the transport-neutral view of an inbound chat event.
type Event struct {
	// ID is the transport delivery id, used to drop redeliveries.
	ID         string
	Kind       EventKind
	UserID     string
	Handle     string
	Command    string
	Args       string
	Text       string
	Action     Action
	Media      *MediaRef
	ReceivedAt time.Time
}

// Button is an inline action shown under a response. Exactly one of
// Action and URL is set.
type Button struct {
	Label  string
	Action *Action
	URL    string
}

// CallbackButton builds a button that sends the action back when tapped.
func CallbackButton(label string, action Action) Button {
	return Button{Label: label, Action: &action}
}

// LinkButton builds a button that opens an external URL.
func LinkButton(label, url string) Button {
	return Button{Label: label, URL: url}
}

// Response is the transport-neutral outbound payload.
type Response struct {
	Recipient string
	Text      string
	Markdown  bool
	Buttons   [][]Button
	// Media, when set, is re-sent with Text as its caption.
	Media *MediaRef
}
