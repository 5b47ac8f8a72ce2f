package sheets

import (
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/budget-flow/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

func TestClassifyAPIError(t *testing.T) {
	plain := errors.New("network down")

	tests := []struct {
		name          string
		err           error
		wantRetryable bool
		wantRateLimit bool
	}{
		{name: "rate limited", err: &googleapi.Error{Code: http.StatusTooManyRequests}, wantRetryable: true, wantRateLimit: true},
		{name: "server error", err: &googleapi.Error{Code: http.StatusServiceUnavailable}, wantRetryable: true},
		{name: "not found", err: &googleapi.Error{Code: http.StatusNotFound}},
		{name: "forbidden", err: &googleapi.Error{Code: http.StatusForbidden}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyAPIError(tt.err)
			assert.Equal(t, tt.wantRetryable, common.IsRetryable(got))
			assert.Equal(t, tt.wantRateLimit, errors.Is(got, common.ErrRateLimit))
		})
	}

	assert.NoError(t, classifyAPIError(nil))
	assert.Same(t, plain, classifyAPIError(plain))
}

func TestNewClientWithAPI_Defaults(t *testing.T) {
	client := NewClientWithAPI(NewFakeValues(nil), "abc", Config{}, nil)
	assert.Equal(t, "abc", client.SpreadsheetID())
	assert.Equal(t, DefaultConfig().BatchSize, client.batchSize)
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, SaveToken(path, token))

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, token.AccessToken, loaded.AccessToken)
	assert.Equal(t, token.RefreshToken, loaded.RefreshToken)
	assert.True(t, token.Expiry.Equal(loaded.Expiry))

	_, err = LoadToken(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
