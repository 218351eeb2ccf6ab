package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurtniculi26/RentAll/internal/domain"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Phone    string `json:"phoneNumber" validate:"required,len=10,numeric"`
}

func TestPassword(t *testing.T) {
	cases := map[string]bool{
		"abc12345":  true,
		"ABCdef99":  true,
		"abcdefgh":  false,
		"12345678":  false,
		"abc1234":   false,
		"abc 12345": false,
		"abc1234!":  false,
	}
	cases[strings.Repeat("a", 71)+"1"] = true
	cases[strings.Repeat("a", 72)+"1"] = false
	for in, want := range cases {
		assert.Equal(t, want, Password(in), in)
	}
}

func TestStruct_FieldErrorsUseJSONNames(t *testing.T) {
	err := Struct(signup{Email: "nope", Password: "short", Phone: "12345"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must be a valid email address", ve.Fields["email"])
	assert.Contains(t, ve.Fields, "password")
	assert.Equal(t, "must be exactly 10 characters", ve.Fields["phoneNumber"])
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(signup{Email: "a@b.co", Password: "abc12345", Phone: "0917123456"}))
}

func TestEmail(t *testing.T) {
	assert.True(t, Email("renter@example.com"))
	assert.False(t, Email(""))
	assert.False(t, Email("renter@"))
}
