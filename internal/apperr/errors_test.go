package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad input"), http.StatusBadRequest},
		{"forbidden", Forbidden("not yours"), http.StatusForbidden},
		{"not found", NotFound("gone"), http.StatusNotFound},
		{"conflict", Conflict("lost the race"), http.StatusConflict},
		{"rate limited", RateLimited("slow down"), http.StatusTooManyRequests},
		{"unavailable", Unavailable("retry later"), http.StatusServiceUnavailable},
		{"unauthenticated sentinel", ErrUnauthenticated, http.StatusUnauthorized},
		{"wrapped", fmt.Errorf("resolving request: %w", Conflict("already resolved")), http.StatusConflict},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"nil-ish unknown", fmt.Errorf("opaque"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Validation("reason must be one of Internship, Skills, CGPA, Placement")
	assert.Equal(t, "reason must be one of Internship, Skills, CGPA, Placement", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.Code)
}
