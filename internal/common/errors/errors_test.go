package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ahwlsqja/lti-tool-provider/pkg/oauth1"
	"github.com/stretchr/testify/assert"
)

func TestFromValidation(t *testing.T) {
	tests := []struct {
		err        error
		wantCode   string
		wantStatus int
	}{
		{oauth1.ErrInvalidSignature, CodeInvalidSignature, http.StatusUnauthorized},
		{oauth1.ErrNonceReused, CodeNonceReused, http.StatusUnauthorized},
		{oauth1.ErrTimestampExpired, CodeTimestampExpired, http.StatusUnauthorized},
		{oauth1.ErrInvalidNonce, CodeInvalidNonce, http.StatusBadRequest},
		{fmt.Errorf("%w: overflow", oauth1.ErrInvalidTimestamp), CodeInvalidTimestamp, http.StatusBadRequest},
		{fmt.Errorf("%w: no consumer secret", oauth1.ErrConfiguration), CodeConfiguration, http.StatusInternalServerError},
		{stderrors.New("dial tcp: connection refused"), CodeStoreError, http.StatusServiceUnavailable},
		{UnknownConsumer("k"), CodeUnknownConsumer, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			appErr := FromValidation(tt.err)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantStatus, appErr.StatusCode)
		})
	}
}

func TestFromValidation_KeepsCause(t *testing.T) {
	appErr := FromValidation(oauth1.ErrNonceReused)
	assert.True(t, stderrors.Is(appErr, oauth1.ErrNonceReused))
	assert.NotContains(t, appErr.Message, "nonce has already been used")
}
