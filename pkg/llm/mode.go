package llm

import "fmt"

// Mode selects one of the mutually exclusive views of the application.
type Mode int

const (
	ModeChatBot Mode = iota
	ModeImageCaptioning
	ModeEmbedText
	ModeAskAnything
)

// DefaultMode is active until the user picks another one.
const DefaultMode = ModeChatBot

type modeInfo struct {
	slug  string
	label string
	title string
	icon  string
}

var modes = [...]modeInfo{
	ModeChatBot:         {slug: "chat", label: "ChatBot", title: "🤖 ChatBot", icon: "chat-dots-fill"},
	ModeImageCaptioning: {slug: "caption", label: "Image Captioning", title: "📷 Snap Narrate", icon: "image-fill"},
	ModeEmbedText:       {slug: "embed", label: "Embed text", title: "🔡 Embed Text", icon: "textarea-t"},
	ModeAskAnything:     {slug: "ask", label: "Ask me anything", title: "❓ Ask me a question", icon: "patch-question-fill"},
}

// Modes returns every mode in menu order.
func Modes() []Mode {
	out := make([]Mode, len(modes))
	for i := range modes {
		out[i] = Mode(i)
	}
	return out
}

// ParseMode resolves a URL slug ("chat", "caption", "embed", "ask") to a Mode.
func ParseMode(slug string) (Mode, error) {
	for i, m := range modes {
		if m.slug == slug {
			return Mode(i), nil
		}
	}
	return DefaultMode, fmt.Errorf("unknown mode %q", slug)
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	return m >= 0 && int(m) < len(modes)
}

// Slug is the URL path segment of the mode.
func (m Mode) Slug() string {
	if !m.Valid() {
		return ""
	}
	return modes[m].slug
}

// Title is the heading shown on the mode's view.
func (m Mode) Title() string {
	if !m.Valid() {
		return ""
	}
	return modes[m].title
}

// Icon names the menu icon of the mode.
func (m Mode) Icon() string {
	if !m.Valid() {
		return ""
	}
	return modes[m].icon
}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modes[m].label
}
