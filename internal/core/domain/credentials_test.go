package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCredentials_AllFromEnv(t *testing.T) {
	env := map[string]string{
		EnvStoreURL:    "postgres://db/kb",
		EnvStoreKey:    "service-key",
		EnvProviderKey: "sk-test",
	}

	creds, err := ResolveCredentials(nil, env)
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/kb", creds.StoreURL)
	assert.Equal(t, "service-key", creds.StoreKey)
	assert.Equal(t, "sk-test", creds.ProviderKey)
}

func TestResolveCredentials_HeaderOverridesEnv(t *testing.T) {
	headers := map[string]string{
		HeaderStoreURL:    "postgres://header/kb",
		HeaderProviderKey: "sk-header",
	}
	env := map[string]string{
		EnvStoreURL:    "postgres://env/kb",
		EnvStoreKey:    "env-key",
		EnvProviderKey: "sk-env",
	}

	creds, err := ResolveCredentials(headers, env)
	require.NoError(t, err)
	assert.Equal(t, "postgres://header/kb", creds.StoreURL)
	assert.Equal(t, "env-key", creds.StoreKey)
	assert.Equal(t, "sk-header", creds.ProviderKey)
}

func TestResolveCredentials_HeaderCaseInsensitive(t *testing.T) {
	headers := map[string]string{
		"X-Store-Url":  "postgres://header/kb",
		"X-Store-Key":  "header-key",
		"X-Openai-Key": "sk-header",
	}

	creds, err := ResolveCredentials(headers, nil)
	require.NoError(t, err)
	assert.Equal(t, "header-key", creds.StoreKey)
}

func TestResolveCredentials_NamesEveryMissingField(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		env     map[string]string
		missing []string
	}{
		{
			name:    "all missing",
			missing: []string{FieldStoreURL, FieldStoreKey, FieldProviderKey},
		},
		{
			name:    "only provider key present",
			env:     map[string]string{EnvProviderKey: "sk-test"},
			missing: []string{FieldStoreURL, FieldStoreKey},
		},
		{
			name:    "empty header does not satisfy",
			headers: map[string]string{HeaderStoreURL: ""},
			env: map[string]string{
				EnvStoreKey:    "key",
				EnvProviderKey: "sk-test",
			},
			missing: []string{FieldStoreURL},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveCredentials(tt.headers, tt.env)
			require.Error(t, err)

			var missingErr *MissingCredentialsError
			require.True(t, errors.As(err, &missingErr))
			assert.Equal(t, tt.missing, missingErr.Fields)
		})
	}
}

func TestMissingCredentialsError_Message(t *testing.T) {
	err := &MissingCredentialsError{Fields: []string{FieldStoreURL, FieldProviderKey}}
	assert.Equal(t, "missing credentials: store_url, openai_key", err.Error())
}
