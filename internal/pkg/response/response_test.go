package response

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "estatedesk-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFromErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err  error
		want int
	}{
		{xerrors.ErrValidation, http.StatusBadRequest},
		{xerrors.ErrPermissionDenied, http.StatusForbidden},
		{xerrors.ErrNotFound, http.StatusNotFound},
		{xerrors.ErrConflict, http.StatusConflict},
		{xerrors.ErrAttemptsExceeded, http.StatusConflict},
		{xerrors.ErrNoActiveOTP, http.StatusConflict},
		{xerrors.ErrRateLimited, http.StatusTooManyRequests},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		FromError(c, "operation failed", fmt.Errorf("context: %w", tt.err))
		assert.Equal(t, tt.want, w.Code, "error %v", tt.err)
	}
}
