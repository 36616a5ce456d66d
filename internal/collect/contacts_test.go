package collect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApolloEmailForProfile(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{
			"person": map[string]any{"email": "jane@acme.com"},
		})
	}))
	defer srv.Close()

	a := NewApollo(srv.URL, "key-123")
	email, err := a.EmailForProfile(context.Background(), "https://linkedin.com/in/janesmith")
	require.NoError(t, err)

	assert.Equal(t, "jane@acme.com", email)
	assert.Equal(t, "key-123", got["api_key"])
	assert.Equal(t, "https://linkedin.com/in/janesmith", got["linkedin_url"])
}

func TestApolloContactInfoFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"person": map[string]any{
				"contact_info": map[string]any{"email": "jane@personal.com"},
			},
		})
	}))
	defer srv.Close()

	a := NewApollo(srv.URL, "key-123")
	email, err := a.EmailForProfile(context.Background(), "https://linkedin.com/in/janesmith")
	require.NoError(t, err)
	assert.Equal(t, "jane@personal.com", email)
}

func TestApolloNoEmailIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"person": map[string]any{}})
	}))
	defer srv.Close()

	a := NewApollo(srv.URL, "key-123")
	email, err := a.EmailForProfile(context.Background(), "https://linkedin.com/in/nobody")
	require.NoError(t, err)
	assert.Empty(t, email)
}

func TestApolloErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	a := NewApollo(srv.URL, "key-123")
	_, err := a.EmailForProfile(context.Background(), "https://linkedin.com/in/janesmith")
	assert.Error(t, err)
}

func TestApolloEmptyProfile(t *testing.T) {
	a := NewApollo("http://unused.invalid", "key-123")
	email, err := a.EmailForProfile(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, email)
}
