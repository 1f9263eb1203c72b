package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driving"
	"github.com/custodia-labs/weldsafe/internal/logger"
)

// Ensure ConversationService implements the interface.
var _ driving.ConversationService = (*ConversationService)(nil)

// Router texts.
const (
	// SafeErrorText replaces any internal failure in a chat reply.
	SafeErrorText = "Вибач, сталася помилка при обробці запиту. Спробуй ще раз трохи згодом."

	textUnknownUser       = "Здається, ми ще не знайомі. Будь ласка, напишіть /start, щоб я міг вас зареєструвати та допомогти."
	textFinishDialogue    = "Спершу заверши анкету або напиши /cancel."
	textVoiceDisabled     = "Голосові повідомлення зараз недоступні. Напиши питання текстом."
	textVoiceFailed       = "Помилка обробки голосового."
	textVoiceUnrecognised = "Не вдалося розпізнати голосове повідомлення. Спробуй ще раз."
	textUnknownCommand    = "Невідома команда. Доступні: /start, /profile, /update_profile, /cancel, /support."
)

// ConversationService routes chat updates to the questionnaire or the answer engine.
type ConversationService struct {
	answers     driving.AnswerService
	dialogue    *DialogueService
	profiles    driven.ProfileStore
	chatLog     driven.ChatLog
	transcriber driven.Transcriber
	now         func() time.Time
}

// NewConversationService creates a router. transcriber may be nil, which
// disables voice questions.
func NewConversationService(
	answers driving.AnswerService,
	dialogue *DialogueService,
	profiles driven.ProfileStore,
	chatLog driven.ChatLog,
	transcriber driven.Transcriber,
) *ConversationService {
	return &ConversationService{
		answers:     answers,
		dialogue:    dialogue,
		profiles:    profiles,
		chatLog:     chatLog,
		transcriber: transcriber,
		now:         time.Now,
	}
}

// Handle routes a text, command, button or contact update.
func (c *ConversationService) Handle(ctx context.Context, in domain.Incoming) (*domain.Reply, error) {
	text := strings.TrimSpace(in.Text)

	if strings.HasPrefix(text, "/") {
		return c.command(ctx, in, text)
	}
	if text == domain.ButtonUpdateProfile {
		return c.dialogue.Update(ctx, in)
	}
	if c.dialogue.Active(in.UserID) {
		return c.dialogue.Continue(ctx, in)
	}
	if text == domain.ButtonProfile {
		return c.dialogue.ShowProfile(ctx, in), nil
	}
	if text == "" {
		return &domain.Reply{}, nil
	}

	registered, err := c.profiles.Exists(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !registered {
		return &domain.Reply{Messages: []string{textUnknownUser}}, nil
	}

	in.Text = text
	return c.ask(ctx, in, domain.MessageText), nil
}

// HandleVoice transcribes the audio and answers it as a question.
func (c *ConversationService) HandleVoice(
	ctx context.Context,
	in domain.Incoming,
	filename string,
	audio io.Reader,
) (*domain.Reply, error) {
	if c.dialogue.Active(in.UserID) {
		return &domain.Reply{Messages: []string{textFinishDialogue}}, nil
	}

	registered, err := c.profiles.Exists(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !registered {
		return &domain.Reply{Messages: []string{textUnknownUser}}, nil
	}
	if c.transcriber == nil {
		return &domain.Reply{Messages: []string{textVoiceDisabled}, Buttons: MenuButtons()}, nil
	}

	text, err := c.transcriber.Transcribe(ctx, filename, audio)
	if err != nil {
		logger.Error("Transcription failed for %d: %v", in.UserID, err)
		return &domain.Reply{Messages: []string{textVoiceFailed}, Buttons: MenuButtons()}, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return &domain.Reply{Messages: []string{textVoiceUnrecognised}, Buttons: MenuButtons()}, nil
	}

	in.Text = text
	in.Voice = true
	return c.ask(ctx, in, domain.MessageVoice), nil
}

func (c *ConversationService) command(ctx context.Context, in domain.Incoming, text string) (*domain.Reply, error) {
	name, arg, _ := strings.Cut(text, " ")
	// Group chats address commands as /start@botname.
	name, _, _ = strings.Cut(name, "@")

	switch name {
	case "/start":
		if in.RefSource == "" {
			in.RefSource = strings.TrimSpace(arg)
		}
		return c.dialogue.Start(ctx, in)
	case "/update_profile":
		return c.dialogue.Update(ctx, in)
	case "/profile":
		return c.dialogue.ShowProfile(ctx, in), nil
	case "/cancel":
		return c.dialogue.Cancel(in), nil
	case "/support":
		return c.dialogue.Support(), nil
	default:
		return &domain.Reply{Messages: []string{textUnknownCommand}}, nil
	}
}

// ask answers a registered user's question and logs both sides.
func (c *ConversationService) ask(ctx context.Context, in domain.Incoming, kind domain.MessageType) *domain.Reply {
	c.record(ctx, in, kind, domain.RoleQuestion, in.Text)

	answer, err := c.answers.Ask(ctx, in.Text)
	if err != nil {
		logger.Error("Answer failed for %d (%s): %v", in.UserID, domain.KindOf(err), err)
		if errors.Is(err, context.Canceled) {
			return &domain.Reply{}
		}
		return &domain.Reply{Messages: []string{SafeErrorText}, Buttons: MenuButtons()}
	}

	c.record(ctx, in, kind, domain.RoleAnswer, answer.Text)
	return &domain.Reply{Messages: []string{answer.Text}, Buttons: MenuButtons()}
}

// record appends to the chat log and mirrors the entry to the structured sink.
func (c *ConversationService) record(
	ctx context.Context,
	in domain.Incoming,
	kind domain.MessageType,
	role domain.ChatRole,
	content string,
) {
	entry := domain.ChatEntry{
		UserID:    in.UserID,
		Username:  in.Username,
		Time:      c.now().UTC(),
		MessageID: in.MessageID,
		Type:      kind,
		Role:      role,
		Content:   content,
	}
	if entry.Username == "" {
		entry.Username = in.FirstName
	}

	logger.Event("chat",
		zap.Int64("user_id", entry.UserID),
		zap.String("username", entry.Username),
		zap.Int64("message_id", entry.MessageID),
		zap.String("message_type", string(entry.Type)),
		zap.String("role", string(entry.Role)),
		zap.String("content", entry.Content),
	)

	if c.chatLog == nil {
		return
	}
	if err := c.chatLog.Append(ctx, entry); err != nil {
		logger.Warn("Failed to log %s for %d: %v", role, in.UserID, err)
	}
}
