package collect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ContactResolver resolves a contact email from a profile link. Returning
// ("", nil) means the lookup worked but no email is known, which is not
// an error.
type ContactResolver interface {
	EmailForProfile(ctx context.Context, profileURL string) (string, error)
}

// Apollo resolves emails through an Apollo-compatible people/match endpoint.
type Apollo struct {
	Endpoint string
	APIKey   string
	hc       *http.Client
}

func NewApollo(endpoint, apiKey string) *Apollo {
	return &Apollo{
		Endpoint: endpoint,
		APIKey:   apiKey,
		hc:       &http.Client{Timeout: 20 * time.Second},
	}
}

type apolloResponse struct {
	Person struct {
		Email       string `json:"email"`
		ContactInfo struct {
			Email string `json:"email"`
		} `json:"contact_info"`
	} `json:"person"`
}

func (a *Apollo) EmailForProfile(ctx context.Context, profileURL string) (string, error) {
	if profileURL == "" {
		return "", nil
	}

	payload, _ := json.Marshal(map[string]string{
		"api_key":      a.APIKey,
		"linkedin_url": profileURL,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Endpoint,
		bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := a.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("apollo request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return "", fmt.Errorf("apollo status %d", res.StatusCode)
	}

	var body apolloResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("apollo decode: %w", err)
	}

	if body.Person.Email != "" {
		return body.Person.Email, nil
	}
	return body.Person.ContactInfo.Email, nil
}
