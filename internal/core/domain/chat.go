package domain

import "time"

// MessageType distinguishes typed and spoken questions.
type MessageType string

// Message types.
const (
	MessageText  MessageType = "text"
	MessageVoice MessageType = "voice"
)

// ChatRole identifies who produced a logged message.
type ChatRole string

// Chat roles.
const (
	RoleQuestion ChatRole = "question"
	RoleAnswer   ChatRole = "answer"
)

// ChatEntry is one line of the chat history log.
type ChatEntry struct {
	UserID    int64
	Username  string
	Time      time.Time
	MessageID int64
	Type      MessageType
	Role      ChatRole
	Content   string
}

// Incoming is a transport-neutral chat update.
type Incoming struct {
	// UserID identifies the chat user.
	UserID int64

	// Username is the user's handle or first name.
	Username string

	// FirstName is the user's display name, used in greetings.
	FirstName string

	// MessageID is the transport's message identifier.
	MessageID int64

	// Text is the typed text, a /command, or a button label.
	Text string

	// Callback is button callback data, e.g. "spec:Муляр" or "exp:3-5".
	Callback string

	// ContactPhone is set when the user shared a contact card.
	ContactPhone string

	// Voice marks Text as a transcription of a voice message.
	Voice bool

	// RefSource is the deep-link referral tag from /start, if any.
	RefSource string
}

// Button is a reply keyboard or inline button.
type Button struct {
	// Label is the visible text.
	Label string

	// Data is the callback payload. Empty for plain reply buttons.
	Data string
}

// Reply is the transport-neutral response to an Incoming update.
type Reply struct {
	// Messages are sent in order. Each uses <b> markup only.
	Messages []string

	// Buttons is an optional keyboard shown with the last message.
	Buttons [][]Button
}

// DialogueStep is a state of the registration dialogue.
type DialogueStep int

// Registration steps in order.
const (
	StepName DialogueStep = iota + 1
	StepSurname
	StepPhone
	StepSpecialty
	StepExperience
)

// String returns the step name.
func (s DialogueStep) String() string {
	switch s {
	case StepName:
		return "name"
	case StepSurname:
		return "surname"
	case StepPhone:
		return "phone"
	case StepSpecialty:
		return "specialty"
	case StepExperience:
		return "experience"
	default:
		return "unknown"
	}
}

// DialogueSession holds the fields collected so far for one user.
type DialogueSession struct {
	Step      DialogueStep
	Draft     Profile
	RefSource string
}
