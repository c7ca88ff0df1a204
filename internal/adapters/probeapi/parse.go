package probeapi

import (
	"encoding/json"

	domainauth "github.com/probeops/console/internal/domain/auth"
	apperrors "github.com/probeops/console/internal/errors"
)

// The backend's response shapes drift between releases: the user object
// shows up nested under "user" or flat at the top level, and API keys arrive
// as bare strings, wrapped strings, or wrapped objects. Each parser below is
// a prioritized sequence of shape matchers; when none matches we fail with a
// typed error instead of guessing.

// parseUserPayload extracts the user object from a "current user" style
// response body, accepting both the nested and the flat form.
func parseUserPayload(data []byte) (domainauth.User, error) {
	// Shape 1: {"user": {...}}
	var nested struct {
		User json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(data, &nested); err == nil && isJSONObject(nested.User) {
		return decodeUser(nested.User)
	}

	// Shape 2: the user object directly at the top level.
	if isJSONObject(data) {
		if user, err := decodeUser(data); err == nil {
			return user, nil
		}
	}

	return domainauth.User{}, apperrors.Internal("unrecognized user payload shape")
}

// decodeUser unmarshals a user object and requires the minimal identifying
// fields so an arbitrary object cannot masquerade as a user.
func decodeUser(data []byte) (domainauth.User, error) {
	var user domainauth.User
	if err := json.Unmarshal(data, &user); err != nil {
		return domainauth.User{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode user object")
	}
	if user.ID == 0 && user.Username == "" && user.Email == "" {
		return domainauth.User{}, apperrors.Internal("user object missing identifying fields")
	}
	return user, nil
}

// parseAPIKeyValue extracts a key string from a creation/registration
// response fragment. Accepted shapes, in order:
//
//	"pk_..."                          bare string
//	{"key": ...} / {"value": ...}     wrapped string or nested one level
func parseAPIKeyValue(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", apperrors.Internal("empty api key payload")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", apperrors.Internal("empty api key string")
		}
		return s, nil
	}

	var wrapped struct {
		Key   json.RawMessage `json:"key"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if len(wrapped.Key) > 0 {
			return parseAPIKeyValue(wrapped.Key)
		}
		if len(wrapped.Value) > 0 {
			return parseAPIKeyValue(wrapped.Value)
		}
	}

	return "", apperrors.Internal("unrecognized api key payload shape")
}

// apiKeyEnvelope matches the wrapping variants around a single API key.
type apiKeyEnvelope struct {
	APIKeySnake json.RawMessage `json:"api_key"`
	APIKeyCamel json.RawMessage `json:"apiKey"`
	Key         json.RawMessage `json:"key"`
}

// extractAPIKeyValue pulls the key string out of a response body that may
// wrap it under api_key, apiKey, or key — or be the value itself.
func extractAPIKeyValue(data []byte) (string, error) {
	var env apiKeyEnvelope
	if err := json.Unmarshal(data, &env); err == nil {
		for _, candidate := range []json.RawMessage{env.APIKeySnake, env.APIKeyCamel, env.Key} {
			if len(candidate) > 0 {
				return parseAPIKeyValue(candidate)
			}
		}
	}
	return parseAPIKeyValue(data)
}

// parseAPIKeyRecord decodes one API key list/create entry, tolerating both a
// bare key string and a full object.
func parseAPIKeyRecord(raw json.RawMessage) (domainauth.APIKey, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return domainauth.APIKey{Key: s}, nil
	}

	var key domainauth.APIKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return domainauth.APIKey{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode api key object")
	}
	return key, nil
}

// parseAPIKeyList accepts a top-level array or an array wrapped under one of
// the usual field names.
func parseAPIKeyList(data []byte) ([]domainauth.APIKey, error) {
	items, ok := matchKeyArray(data)
	if !ok {
		var wrapper struct {
			APIKeys json.RawMessage `json:"api_keys"`
			Keys    json.RawMessage `json:"keys"`
			Apikeys json.RawMessage `json:"apikeys"`
		}
		if err := json.Unmarshal(data, &wrapper); err == nil {
			for _, candidate := range []json.RawMessage{wrapper.APIKeys, wrapper.Keys, wrapper.Apikeys} {
				if items, ok = matchKeyArray(candidate); ok {
					break
				}
			}
		}
	}
	if !ok {
		return nil, apperrors.Internal("unrecognized api key list shape")
	}

	keys := make([]domainauth.APIKey, 0, len(items))
	for _, item := range items {
		key, err := parseAPIKeyRecord(item)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func matchKeyArray(data []byte) ([]json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return items, true
}

func isJSONObject(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
