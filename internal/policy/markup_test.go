package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkup_Sanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"markdown bold", "Це **важливо** і __дуже__", "Це <b>важливо</b> і <b>дуже</b>"},
		{"heading", "## Захист очей\nтекст", "<b>Захист очей</b>\nтекст"},
		{"list markers", "* перше\n_ друге\n1. третє", "перше\nдруге\n1. третє"},
		{"stray stars", "зірка * тут", "зірка  тут"},
		{"other tags removed", "<i>курсив</i> <code>x</code> <br>", "курсив x"},
		{"strong becomes b", "<strong>увага</strong>", "<b>увага</b>"},
		{"escapes", "струм < 12 В & напруга > 0", "струм &lt; 12 В &amp; напруга &gt; 0"},
		{"keeps entities", "a &amp; b &#39;", "a &amp; b &#39;"},
		{"unclosed bold closed", "<b>увага", "<b>увага</b>"},
		{"nested and stray", "<b>a <b>b</b> c</b>", "<b>a b</b> c"},
		{"empty bold dropped", "<b></b>текст", "текст"},
		{"tag case", "<B>Так</B>", "<b>Так</b>"},
	}

	var m Markup
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Sanitize(tt.in))
		})
	}
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "Стоп роботу! a < b", StripTags("<b>Стоп роботу!</b> a &lt; b"))
}
