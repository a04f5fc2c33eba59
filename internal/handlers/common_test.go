package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	apperrors "github.com/teacherhub/quiz-service/internal/errors"
	"github.com/teacherhub/quiz-service/internal/services"
	"github.com/teacherhub/quiz-service/internal/utils"
)

func newErrorTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, recorder
}

func TestHandleServiceErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"single field error", apperrors.NewValidationError("headers", "missing required column: email", "email"), http.StatusBadRequest},
		{"field error list", apperrors.ValidationErrors{*apperrors.NewValidationError("title", "is required", nil)}, http.StatusBadRequest},
		{"permission denied", services.NewPermissionError("u1", "q1", "quiz", "view results", "no access to course"), http.StatusForbidden},
		{"not found", services.ErrQuizNotFound, http.StatusNotFound},
		{"resubmission", services.ErrAlreadySubmitted, http.StatusConflict},
		{"inactive quiz", services.ErrQuizNotActive, http.StatusUnprocessableEntity},
	}

	h := NewBaseHandler(utils.NewDevelopmentLogger())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, recorder := newErrorTestContext(t)
			h.handleServiceError(c, tc.err)
			if recorder.Code != tc.want {
				t.Errorf("expected status %d, got %d", tc.want, recorder.Code)
			}
		})
	}
}
