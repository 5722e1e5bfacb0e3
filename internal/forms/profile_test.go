package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileForm_Complete(t *testing.T) {
	f := NewProfileForm()
	assert.Equal(t, "Enter your full name:", f.Prompt())

	for _, a := range []string{"Ann Smith", "Acme LLC", "+7 (999) 123-45-67", "ann@example.com", "Tax law", "12"} {
		require.NoError(t, f.Answer(a))
	}
	assert.True(t, f.Done())
	assert.Equal(t, "+79991234567", f.Phone)
	assert.Equal(t, 12, f.Experience)
	assert.ErrorIs(t, f.Answer("more"), ErrWrongState)
}

func TestProfileForm_ValidationKeepsStep(t *testing.T) {
	f := &ProfileForm{Step: ProfilePhone}
	assert.ErrorIs(t, f.Answer("12345"), ErrInvalidPhone)
	assert.ErrorIs(t, f.Answer("phone: 9991234567"), ErrInvalidPhone)
	assert.Equal(t, ProfilePhone, f.Step)

	f.Step = ProfileEmail
	assert.ErrorIs(t, f.Answer("not-an-email"), ErrInvalidEmail)

	f.Step = ProfileExperience
	assert.ErrorIs(t, f.Answer("-1"), ErrInvalidExperience)
	assert.ErrorIs(t, f.Answer("81"), ErrInvalidExperience)
	assert.ErrorIs(t, f.Answer("ten"), ErrInvalidExperience)
	require.NoError(t, f.Answer("0"))

	f = NewProfileForm()
	assert.ErrorIs(t, f.Answer(" "), ErrEmptyAnswer)
}

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone("999 123 4567")
	require.NoError(t, err)
	assert.Equal(t, "9991234567", got)

	_, err = NormalizePhone("123456789012")
	assert.ErrorIs(t, err, ErrInvalidPhone)
}
