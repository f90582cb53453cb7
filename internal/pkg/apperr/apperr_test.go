package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindClassification(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("vehicle not found")))
	assert.True(t, IsConflict(Conflict("vehicle unavailable")))
	assert.True(t, IsForbidden(Forbidden("account is disabled")))
	assert.True(t, IsInvalid(Invalid("radius must not be negative")))

	// Unclassified errors carry no kind
	assert.Equal(t, Kind(0), KindOf(errors.New("connection refused")))
	assert.False(t, IsNotFound(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("reserving vehicle 7: %w", Conflict("vehicle already reserved"))
	assert.True(t, IsConflict(err))
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Conflict("x"), http.StatusConflict},
		{Forbidden("x"), http.StatusForbidden},
		{Invalid("x"), http.StatusBadRequest},
		{errors.New("x"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err))
	}
}
