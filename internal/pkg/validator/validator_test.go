package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(credentials{Email: "a@b.com", Password: "test1234"}))

	errs := Validate(credentials{Email: "nope", Password: "short"})
	assert.Equal(t, map[string]string{"email": "email", "password": "min"}, errs)

	errs = Validate(credentials{})
	assert.Equal(t, "required", errs["email"])
	assert.Equal(t, "required", errs["password"])
}
