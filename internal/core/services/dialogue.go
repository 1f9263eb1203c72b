package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/logger"
)

// Callback data prefixes for inline buttons.
const (
	specialtyPrefix  = "spec:"
	experiencePrefix = "exp:"
	otherSpecialty   = "other_spec"
)

// Dialogue texts.
const (
	textWelcome = "Привіт! Я твій помічник з безпеки праці ⛑️ Я допоможу тобі із будь-яким питанням! Давай знайомитись 😊"
	textAskName = "Напиши своє імʼя"
	textBadName = "⚠️ Введіть справжнє імʼя."

	textAskSurname = "Окей! А тепер прізвище"
	textBadSurname = "⚠️ Введіть справжнє прізвище."

	textAskPhone = "Поділись своїм номером телефону, натиснувши кнопку нижче або просто напиши його.\n\n" +
		"<i>Твої дані потрібні для створення твого унікального профілю, щоб надати тобі саме те, що тобі потрібно</i>"
	textBadPhone = "⚠️ <b>Невірний формат номеру.</b>\n" +
		"Будь ласка, введіть номер у форматі <code>+380XXXXXXXXX</code>, <code>0XXXXXXXXX</code>, " +
		"або <code>XXXXXXXXX</code> (9 цифр, якщо це український номер)."
	textPhoneSaved = "Окей, рухаємося далі ✅"

	textAskSpecialty      = "Тепер обери свою спеціальність:"
	textManualSpecialty   = "✏️ Добре, напиши свою спеціальність вручну:"
	textBadSpecialty      = "⚠️ Введіть коректну спеціальність (не менше 2 літер, без спецсимволів)."
	textButtonAsSpecialty = "⚠️ Це виглядає як кнопка. Введіть свою спеціальність вручну."
	labelOtherSpecialty   = "Інша спеціальність"

	textBadExperience = "⚠️ Невідомий варіант досвіду. Будь ласка, вибери зі списку."

	textSaved = "✅ Готово! Твою анкету збережено.\n\n" +
		"Тепер задавай мені будь-яке питання з <b>безпеки праці</b> або проходь курс " +
		"<b>“Навчання з Охорони Праці”</b> — кнопка знизу екрана.\n\n" +
		"Я завжди на звʼязку — чекаю на твої питання <b>24/7</b>! \U0001FAE1"
	textSaveFailed = "⚠️ Вибач, сталася помилка при збереженні анкети."

	textCancelled     = "Анкету скасовано."
	textNotRegistered = "Здається, ви ще не зареєстровані. Будь ласка, напишіть /start, щоб розпочати."
	textProfileFailed = "Вибачте, сталася помилка при завантаженні профілю."

	// ButtonSharePhone asks the transport to request the user's contact.
	ButtonSharePhone = "📱 Поділитися номером телефону"
)

// DefaultSessionTTL bounds how long an unfinished registration is kept.
const DefaultSessionTTL = time.Hour

// MenuButtons is the main reply keyboard.
func MenuButtons() [][]domain.Button {
	return [][]domain.Button{
		{{Label: domain.ButtonProfile}, {Label: domain.ButtonUpdateProfile}},
		{{Label: domain.ButtonCourse}},
	}
}

// DialogueService runs the registration questionnaire.
type DialogueService struct {
	profiles   driven.ProfileStore
	sessions   driven.SessionStore
	supportURL string
	now        func() time.Time
}

// NewDialogueService creates a dialogue service.
func NewDialogueService(profiles driven.ProfileStore, sessions driven.SessionStore, supportURL string) *DialogueService {
	if supportURL == "" {
		supportURL = domain.DefaultSupportURL
	}
	return &DialogueService{
		profiles:   profiles,
		sessions:   sessions,
		supportURL: supportURL,
		now:        time.Now,
	}
}

// Active reports whether the user is in the middle of the questionnaire.
func (d *DialogueService) Active(userID int64) bool {
	_, ok := d.sessions.Get(userID)
	return ok
}

// Start greets a returning user or begins registration.
func (d *DialogueService) Start(ctx context.Context, in domain.Incoming) (*domain.Reply, error) {
	profile, err := d.profiles.Get(ctx, in.UserID)
	switch {
	case err == nil && profile.FirstName != "":
		d.sessions.Delete(in.UserID)
		return &domain.Reply{
			Messages: []string{fmt.Sprintf("З поверненням, <b>%s</b>!\nГотовий відповідати на твої запитання:",
				html.EscapeString(profile.FirstName))},
			Buttons: MenuButtons(),
		}, nil
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("load profile: %w", err)
	}

	d.begin(in.UserID, in.RefSource, profile)
	return &domain.Reply{Messages: []string{textWelcome, textAskName}}, nil
}

// Update restarts the questionnaire for a registered user.
func (d *DialogueService) Update(ctx context.Context, in domain.Incoming) (*domain.Reply, error) {
	profile, err := d.profiles.Get(ctx, in.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Reply{Messages: []string{textNotRegistered}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	name := in.FirstName
	if name == "" {
		name = "друже"
	}
	d.begin(in.UserID, "", profile)
	return &domain.Reply{Messages: []string{
		fmt.Sprintf("Привіт, %s! Давай оновимо анкету.", html.EscapeString(name)),
		textAskName,
	}}, nil
}

// Cancel drops the unfinished questionnaire.
func (d *DialogueService) Cancel(in domain.Incoming) *domain.Reply {
	d.sessions.Delete(in.UserID)
	return &domain.Reply{Messages: []string{textCancelled}, Buttons: MenuButtons()}
}

// Support returns the support contact.
func (d *DialogueService) Support() *domain.Reply {
	return &domain.Reply{Messages: []string{"Пиши нам тут:\n" + d.supportURL}}
}

// ShowProfile renders the stored profile.
func (d *DialogueService) ShowProfile(ctx context.Context, in domain.Incoming) *domain.Reply {
	p, err := d.profiles.Get(ctx, in.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Reply{Messages: []string{textNotRegistered}}
	}
	if err != nil {
		logger.Error("Failed to load profile for %d: %v", in.UserID, err)
		return &domain.Reply{Messages: []string{textProfileFailed}}
	}
	return &domain.Reply{Messages: []string{RenderProfile(p)}, Buttons: MenuButtons()}
}

// RenderProfile formats a profile as an HTML message.
func RenderProfile(p *domain.Profile) string {
	field := func(s string) string {
		if s == "" {
			return "N/A"
		}
		return html.EscapeString(s)
	}
	var b strings.Builder
	b.WriteString("👤 <b>Твоя анкета:</b>\n")
	b.WriteString("<b>Ім'я:</b> " + field(p.FirstName) + "\n")
	b.WriteString("<b>Прізвище:</b> " + field(p.LastName) + "\n")
	b.WriteString("<b>Телефон:</b> " + field(p.Phone) + "\n")
	b.WriteString("<b>Спеціальність:</b> " + field(p.Specialty) + "\n")
	b.WriteString("<b>Досвід:</b> " + field(p.Experience.Label()))
	return b.String()
}

// Continue feeds one update to the active step.
func (d *DialogueService) Continue(ctx context.Context, in domain.Incoming) (*domain.Reply, error) {
	session, ok := d.sessions.Get(in.UserID)
	if !ok {
		return nil, fmt.Errorf("%w: no registration in progress", domain.ErrNotFound)
	}

	text := strings.TrimSpace(in.Text)
	switch session.Step {
	case domain.StepName:
		return d.name(in.UserID, session, text), nil
	case domain.StepSurname:
		return d.surname(in.UserID, session, text), nil
	case domain.StepPhone:
		return d.phone(in.UserID, session, in), nil
	case domain.StepSpecialty:
		return d.specialty(in.UserID, session, in), nil
	case domain.StepExperience:
		return d.experience(ctx, session, in), nil
	default:
		d.sessions.Delete(in.UserID)
		return nil, fmt.Errorf("%w: unknown dialogue step %d", domain.ErrInvalidInput, session.Step)
	}
}

func (d *DialogueService) begin(userID int64, ref string, existing *domain.Profile) {
	session := &domain.DialogueSession{Step: domain.StepName, RefSource: ref}
	if existing != nil && ref == "" {
		session.RefSource = existing.RefSource
	}
	d.sessions.Put(userID, session)
}

func (d *DialogueService) name(userID int64, s *domain.DialogueSession, text string) *domain.Reply {
	if domain.ValidateName(text) != nil {
		return &domain.Reply{Messages: []string{textBadName}}
	}
	s.Draft.FirstName = text
	s.Step = domain.StepSurname
	d.sessions.Put(userID, s)
	return &domain.Reply{Messages: []string{textAskSurname}}
}

func (d *DialogueService) surname(userID int64, s *domain.DialogueSession, text string) *domain.Reply {
	if domain.ValidateName(text) != nil {
		return &domain.Reply{Messages: []string{textBadSurname}}
	}
	s.Draft.LastName = text
	s.Step = domain.StepPhone
	d.sessions.Put(userID, s)
	return &domain.Reply{
		Messages: []string{
			fmt.Sprintf("Радий знайомству, <b>%s</b>! Давай далі 💪", html.EscapeString(s.Draft.FirstName)),
			textAskPhone,
		},
		Buttons: [][]domain.Button{{{Label: ButtonSharePhone}}},
	}
}

func (d *DialogueService) phone(userID int64, s *domain.DialogueSession, in domain.Incoming) *domain.Reply {
	var phone string
	if in.ContactPhone != "" {
		phone = domain.NormaliseContactPhone(in.ContactPhone)
	} else {
		normalised, err := domain.NormalisePhone(in.Text)
		if err != nil {
			return &domain.Reply{Messages: []string{textBadPhone}}
		}
		phone = normalised
	}

	s.Draft.Phone = phone
	s.Step = domain.StepSpecialty
	d.sessions.Put(userID, s)
	return &domain.Reply{
		Messages: []string{textPhoneSaved, textAskSpecialty},
		Buttons:  specialtyButtons(),
	}
}

func (d *DialogueService) specialty(userID int64, s *domain.DialogueSession, in domain.Incoming) *domain.Reply {
	var specialty string
	if choice, ok := strings.CutPrefix(in.Callback, specialtyPrefix); ok {
		if choice == otherSpecialty {
			return &domain.Reply{Messages: []string{textManualSpecialty}}
		}
		if !knownSpecialty(choice) {
			return &domain.Reply{Messages: []string{textAskSpecialty}, Buttons: specialtyButtons()}
		}
		specialty = choice
	} else {
		text := strings.TrimSpace(in.Text)
		if domain.IsMenuButton(text) {
			return &domain.Reply{Messages: []string{textButtonAsSpecialty}}
		}
		if domain.ValidateSpecialty(text) != nil {
			return &domain.Reply{Messages: []string{textBadSpecialty}}
		}
		specialty = text
	}

	s.Draft.Specialty = specialty
	s.Step = domain.StepExperience
	d.sessions.Put(userID, s)
	return &domain.Reply{
		Messages: []string{
			fmt.Sprintf("✅ Спеціальність: <b>%s</b>", html.EscapeString(specialty)),
			experiencePrompt(s.Draft.FirstName),
		},
		Buttons: experienceButtons(),
	}
}

func (d *DialogueService) experience(ctx context.Context, s *domain.DialogueSession, in domain.Incoming) *domain.Reply {
	choice, ok := strings.CutPrefix(in.Callback, experiencePrefix)
	if !ok {
		return &domain.Reply{Messages: []string{experiencePrompt(s.Draft.FirstName)}, Buttons: experienceButtons()}
	}
	exp := domain.Experience(choice)
	if !exp.IsValid() {
		return &domain.Reply{Messages: []string{textBadExperience}, Buttons: experienceButtons()}
	}

	profile := s.Draft
	profile.UserID = in.UserID
	profile.Experience = exp
	profile.Username = in.Username
	profile.RefSource = s.RefSource
	profile.UpdatedAt = d.now().UTC()

	d.sessions.Delete(in.UserID)
	if err := d.profiles.Upsert(ctx, &profile); err != nil {
		logger.Error("Failed to save profile for %d: %v", in.UserID, err)
		return &domain.Reply{Messages: []string{textSaveFailed}}
	}
	logger.Info("Registered user %d (%s)", in.UserID, profile.Specialty)

	return &domain.Reply{
		Messages: []string{
			fmt.Sprintf("✅ Досвід: <b>%s</b>", html.EscapeString(exp.Label())),
			textSaved,
		},
		Buttons: MenuButtons(),
	}
}

func experiencePrompt(name string) string {
	if name == "" {
		name = "друже"
	}
	return fmt.Sprintf("Чудово, <b>%s</b>! Ще трошки! 🤗\nСкільки років ти працюєш за спеціальністю?",
		html.EscapeString(name))
}

func knownSpecialty(s string) bool {
	for _, known := range domain.Specialties {
		if s == known {
			return true
		}
	}
	return false
}

func specialtyButtons() [][]domain.Button {
	rows := make([][]domain.Button, 0, len(domain.Specialties)+1)
	for _, s := range domain.Specialties {
		rows = append(rows, []domain.Button{{Label: s, Data: specialtyPrefix + s}})
	}
	return append(rows, []domain.Button{{Label: labelOtherSpecialty, Data: specialtyPrefix + otherSpecialty}})
}

func experienceButtons() [][]domain.Button {
	all := domain.AllExperiences()
	rows := make([][]domain.Button, 0, (len(all)+1)/2)
	for i := 0; i < len(all); i += 2 {
		row := []domain.Button{{Label: all[i].Label(), Data: experiencePrefix + string(all[i])}}
		if i+1 < len(all) {
			row = append(row, domain.Button{Label: all[i+1].Label(), Data: experiencePrefix + string(all[i+1])})
		}
		rows = append(rows, row)
	}
	return rows
}
