package domain

import (
	"fmt"
	"strings"
)

// Request headers carrying per-session credentials. A header value always
// overrides the corresponding environment value.
const (
	HeaderStoreURL    = "x-store-url"
	HeaderStoreKey    = "x-store-key"
	HeaderProviderKey = "x-openai-key"
)

// Environment variables consulted when a header is absent.
const (
	EnvStoreURL    = "KB_STORE_URL"
	EnvStoreKey    = "KB_STORE_KEY"
	EnvProviderKey = "OPENAI_API_KEY"
)

// Field names reported by MissingCredentialsError.
const (
	FieldStoreURL    = "store_url"
	FieldStoreKey    = "store_key"
	FieldProviderKey = "openai_key"
)

// Credentials is the resolved triple a session operates with. It is
// immutable for the lifetime of a value; the session registry replaces the
// whole value on overwrite.
type Credentials struct {
	// StoreURL is the document store connection string.
	StoreURL string

	// StoreKey is the document store service key.
	StoreKey string

	// ProviderKey is the model provider API key.
	ProviderKey string
}

// MissingCredentialsError names every credential field that could not be
// resolved, not just the first.
type MissingCredentialsError struct {
	Fields []string
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("missing credentials: %s", strings.Join(e.Fields, ", "))
}

// ResolveCredentials builds a credential triple from request headers and the
// process environment. Headers take precedence per field. It is a pure
// function of its inputs.
//
// Header keys are matched case-insensitively, as HTTP header names are.
func ResolveCredentials(headers, env map[string]string) (Credentials, error) {
	lookup := func(header, envKey string) string {
		for k, v := range headers {
			if strings.EqualFold(k, header) && v != "" {
				return v
			}
		}
		return env[envKey]
	}

	creds := Credentials{
		StoreURL:    lookup(HeaderStoreURL, EnvStoreURL),
		StoreKey:    lookup(HeaderStoreKey, EnvStoreKey),
		ProviderKey: lookup(HeaderProviderKey, EnvProviderKey),
	}

	var missing []string
	if creds.StoreURL == "" {
		missing = append(missing, FieldStoreURL)
	}
	if creds.StoreKey == "" {
		missing = append(missing, FieldStoreKey)
	}
	if creds.ProviderKey == "" {
		missing = append(missing, FieldProviderKey)
	}
	if len(missing) > 0 {
		return Credentials{}, &MissingCredentialsError{Fields: missing}
	}

	return creds, nil
}
