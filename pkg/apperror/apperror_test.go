package apperror

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{NotFound("center"), http.StatusNotFound},
		{SlotConflict("slot taken"), http.StatusConflict},
		{InvalidTransition("completed", "cancelled"), http.StatusConflict},
		{Timeout(context.DeadlineExceeded), http.StatusGatewayTimeout},
		{Internal(fmt.Errorf("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.StatusCode(), tt.err.Message)
	}
}

func TestCodeOfUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("handling request: %w", NotFound("appointment"))
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
	assert.True(t, IsCode(wrapped, CodeNotFound))
}

func TestCodeOfForeignError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(fmt.Errorf("plain")))
	assert.False(t, IsCode(nil, CodeValidation))
}

func TestTimeoutKeepsCause(t *testing.T) {
	err := Timeout(context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
