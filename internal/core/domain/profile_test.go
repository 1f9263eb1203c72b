package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalisePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"local format", "067 123 45 67", "+380671234567", false},
		{"international without plus", "380501234567", "+380501234567", false},
		{"international with plus and dashes", "+38-050-123-45-67", "+380501234567", false},
		{"nine digits with operator code", "931234567", "+380931234567", false},
		{"nine digits unknown code", "121234567", "", true},
		{"too short", "12345", "", true},
		{"letters only", "телефон", "", true},
		{"eleven digits", "06712345678", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalisePhone(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormaliseContactPhone(t *testing.T) {
	assert.Equal(t, "+380671234567", NormaliseContactPhone("380671234567"))
	assert.Equal(t, "+380671234567", NormaliseContactPhone(" +380671234567 "))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Ігор"))
	assert.NoError(t, ValidateName("Ян"))
	assert.ErrorIs(t, ValidateName("Я"), ErrInvalidInput)
	assert.ErrorIs(t, ValidateName("  "), ErrInvalidInput)
	assert.ErrorIs(t, ValidateName(ButtonProfile), ErrInvalidInput)
}

func TestValidateSpecialty(t *testing.T) {
	assert.NoError(t, ValidateSpecialty("Електрик"))
	assert.ErrorIs(t, ValidateSpecialty("а"), ErrInvalidInput)
	assert.ErrorIs(t, ValidateSpecialty("Зварник<script>"), ErrInvalidInput)
	assert.ErrorIs(t, ValidateSpecialty(ButtonUpdateProfile), ErrInvalidInput)
}

func TestExperience(t *testing.T) {
	for _, e := range AllExperiences() {
		assert.True(t, e.IsValid(), e)
	}
	assert.False(t, Experience("10+").IsValid())
	assert.Equal(t, "3–5 років", ExperienceThreeFive.Label())
	assert.Equal(t, "10+", Experience("10+").Label())
}

func TestDialogueStep_String(t *testing.T) {
	assert.Equal(t, "name", StepName.String())
	assert.Equal(t, "experience", StepExperience.String())
	assert.Equal(t, "unknown", DialogueStep(0).String())
}

func TestCitation_String(t *testing.T) {
	assert.Equal(t, "ДСТУ ISO 11611-2019, 4.2.2", Citation{Standard: "ДСТУ ISO 11611-2019", Clause: "4.2.2"}.String())
	assert.Equal(t, "ДБН А.3.2-2-2009", Citation{Standard: "ДБН А.3.2-2-2009"}.String())
}

func TestContents(t *testing.T) {
	chunks := []RetrievedChunk{
		{Chunk: Chunk{Content: "a"}},
		{Chunk: Chunk{Content: "b"}},
	}
	assert.Equal(t, []string{"a", "b"}, Contents(chunks))
	assert.Empty(t, Contents(nil))
}

func TestIsMenuButton(t *testing.T) {
	assert.True(t, IsMenuButton(ButtonCourse))
	assert.False(t, IsMenuButton("Профіль"))
}
