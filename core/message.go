package core

import "time"

// Message is the transport-agnostic view of an inbound chat message. The
// transport layer constructs one per event; the engine never reaches back
// into platform SDK types.
type Message struct {
	ID          string
	ChannelID   string
	AuthorID    string
	AuthorName  string
	Content     string
	MentionsBot bool
	Timestamp   time.Time
}

// Attachment is a binary output (e.g. a generated image) carried on tool
// results and outbound replies.
type Attachment struct {
	Name string
	Data []byte
}

// Button is non-interactive indicator metadata attached to a reply. A button
// with a URL renders as a link-style control; otherwise it is a disabled
// label.
type Button struct {
	Label    string
	URL      string
	Disabled bool
}
