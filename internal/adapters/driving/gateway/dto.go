package gateway

import "github.com/custodia-labs/weldsafe/internal/core/domain"

// AnswerRequest is the body of POST /v1/answer.
type AnswerRequest struct {
	Question string `json:"question"`
}

// AnswerResponse is the body returned by POST /v1/answer.
type AnswerResponse struct {
	Answer        string   `json:"answer"`
	Emergency     bool     `json:"emergency"`
	Fallback      bool     `json:"fallback"`
	Clarification bool     `json:"clarification"`
	Citations     []string `json:"citations,omitempty"`
	RequestID     string   `json:"request_id"`
}

// MessageRequest is a chat update relayed by a transport.
type MessageRequest struct {
	UserID       int64  `json:"user_id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	MessageID    int64  `json:"message_id"`
	Text         string `json:"text"`
	Callback     string `json:"callback"`
	ContactPhone string `json:"contact_phone"`
	RefSource    string `json:"ref_source"`
}

func (m MessageRequest) incoming() domain.Incoming {
	return domain.Incoming{
		UserID:       m.UserID,
		Username:     m.Username,
		FirstName:    m.FirstName,
		MessageID:    m.MessageID,
		Text:         m.Text,
		Callback:     m.Callback,
		ContactPhone: m.ContactPhone,
		RefSource:    m.RefSource,
	}
}

// ButtonResponse is one keyboard button.
type ButtonResponse struct {
	Label string `json:"label"`
	Data  string `json:"data,omitempty"`
}

// ReplyResponse is the body returned by the chat endpoints.
type ReplyResponse struct {
	Messages  []string           `json:"messages"`
	Buttons   [][]ButtonResponse `json:"buttons,omitempty"`
	RequestID string             `json:"request_id"`
}

func replyResponse(r *domain.Reply, requestID string) ReplyResponse {
	out := ReplyResponse{Messages: r.Messages, RequestID: requestID}
	if out.Messages == nil {
		out.Messages = []string{}
	}
	for _, row := range r.Buttons {
		buttons := make([]ButtonResponse, len(row))
		for i, b := range row {
			buttons[i] = ButtonResponse{Label: b.Label, Data: b.Data}
		}
		out.Buttons = append(out.Buttons, buttons)
	}
	return out
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"request_id"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	BuildID string `json:"build_id,omitempty"`
}
