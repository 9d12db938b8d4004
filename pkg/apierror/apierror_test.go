package apierror

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIErrorFormatting(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "BAD_REQUEST: invalid JSON body", BadRequest("invalid JSON body", "").Error())
	assert.Equal(t, "BAD_REQUEST: email is required (email)", BadRequest("email is required", "email").Error())

	var nilErr *APIError
	assert.Equal(t, "", nilErr.Error())
}

func TestNewCarriesStatus(t *testing.T) {
	t.Parallel()

	err := New("TEAPOT", "short and stout", "", http.StatusTeapot)
	assert.Equal(t, http.StatusTeapot, err.HTTPStatus)
	assert.Equal(t, "TEAPOT: short and stout", err.Error())
}
