package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendSend(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewResend(srv.URL, "re_key", "outreach@founderflow.dev")
	err := s.Send(context.Background(), "jane@acme.com", "hello", "world")
	require.NoError(t, err)

	assert.Equal(t, "Bearer re_key", gotAuth)
	assert.Equal(t, "outreach@founderflow.dev", gotBody["from"])
	assert.Equal(t, []any{"jane@acme.com"}, gotBody["to"])
	assert.Equal(t, "hello", gotBody["subject"])
	assert.Equal(t, "world", gotBody["text"])
}

func TestResendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewResend(srv.URL, "bad", "outreach@founderflow.dev")
	err := s.Send(context.Background(), "jane@acme.com", "hello", "world")
	assert.Error(t, err)
}
