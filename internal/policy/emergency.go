package policy

import "strings"

// Emergency is the result of scanning a question for acute hazards.
type Emergency struct {
	Detected bool

	// Triggers lists the matched keyword stems.
	Triggers []string
}

// trigger matches when every part occurs in the lowercased question.
type trigger struct {
	name  string
	parts []string
}

// EmergencyDetector flags questions that describe a threat to life.
type EmergencyDetector struct {
	triggers []trigger
}

// NewEmergencyDetector returns a detector with the built-in Ukrainian stems.
func NewEmergencyDetector() *EmergencyDetector {
	stems := []string{
		"опік", "обпік", "вибух", "без свідомості", "знепритомн", "непритомн",
		"пожеж", "загорів", "отруєн", "задух", "удар струм", "кровотеч", "не дихає",
	}
	d := &EmergencyDetector{}
	for _, s := range stems {
		d.triggers = append(d.triggers, trigger{name: s, parts: []string{s}})
	}
	d.triggers = append(d.triggers, trigger{name: "уражен… струм", parts: []string{"уражен", "струм"}})
	return d
}

// Detect reports which triggers occur in query.
func (d *EmergencyDetector) Detect(query string) Emergency {
	q := strings.ToLower(strings.Join(strings.Fields(query), " "))

	var e Emergency
	for _, t := range d.triggers {
		if containsAll(q, t.parts) {
			e.Triggers = append(e.Triggers, t.name)
		}
	}
	e.Detected = len(e.Triggers) > 0
	return e
}

func containsAll(s string, parts []string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

// Directive is the line every emergency answer opens with.
const Directive = "<b>Стоп роботу!</b> Відійди в безпечну зону й зателефонуй 101."

// Escalation puts the emergency directive in front of an answer.
type Escalation struct{}

// Apply returns text opening with Directive exactly once.
// Copies of the directive the model wrote itself are removed first.
func (e Escalation) Apply(text string) string {
	body := e.Strip(text)
	if body == "" {
		return Directive
	}
	return Directive + "\n\n" + body
}

// Strip removes every line that repeats the directive.
func (Escalation) Strip(text string) string {
	plain := StripTags(Directive)
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if StripTags(strings.TrimSpace(line)) == plain {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
