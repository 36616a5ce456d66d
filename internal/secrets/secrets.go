package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the engine's secrets in the OS keychain.
const KeyringService = "founderflow"

// Keychain account names, one per external provider.
const (
	AccountSearch   = "serpapi"
	AccountContacts = "apollo"
	AccountEmail    = "resend"
)

var envFallback = map[string]string{
	AccountSearch:   "SERPAPI_API_KEY",
	AccountContacts: "APOLLO_API_KEY",
	AccountEmail:    "RESEND_API_KEY",
}

// APIKey resolves a provider key: keychain first, environment second.
func APIKey(account string) (string, error) {
	pw, err := keyring.Get(KeyringService, account)
	if err == nil && strings.TrimSpace(pw) != "" {
		return pw, nil
	}

	if env := envFallback[account]; env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, nil
		}
	}

	return "", errors.New("API key for " + account + " not found (set it in the keychain or via env)")
}

// SetAPIKey stores a provider key in the OS keychain.
func SetAPIKey(account, key string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("refusing to store an empty key")
	}
	return keyring.Set(KeyringService, account, key)
}
