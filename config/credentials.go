package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const credentialEnvPrefix = "AWAKEN_"

// CredentialStore resolves provider API keys. Configured values win over the environment.
type CredentialStore struct {
	configured map[string]string
}

// LoadCredentials loads .env style files into the process environment (missing files are skipped)
// and returns a store over the configured values.
func LoadCredentials(configured map[string]string, envFiles ...string) (CredentialStore, error) {
	for _, file := range envFiles {
		err := godotenv.Load(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return CredentialStore{}, err
		}
	}

	store := CredentialStore{configured: make(map[string]string, len(configured))}
	for provider, value := range configured {
		store.configured[strings.ToLower(provider)] = value
	}
	return store, nil
}

// Credential returns the key for a provider. A missing key is not an error; callers use their built-in default.
func (c CredentialStore) Credential(provider string) (string, bool) {
	provider = strings.ToLower(provider)
	if value, ok := c.configured[provider]; ok && strings.TrimSpace(value) != "" {
		return value, true
	}
	value := os.Getenv(credentialEnvName(provider))
	if strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

func credentialEnvName(provider string) string {
	return credentialEnvPrefix + strings.ToUpper(strings.ReplaceAll(provider, "-", "_")) + "_API_KEY"
}
