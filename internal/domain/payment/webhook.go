package payment

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseWebhookPayload extracts the provider payment id from an arbitrary
// JSON webhook body. The body must be an object with a non-empty string id.
func ParseWebhookPayload(body []byte) (string, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedWebhookPayload, err)
	}
	if payload == nil {
		return "", fmt.Errorf("%w: not an object", ErrMalformedWebhookPayload)
	}

	raw, ok := payload["id"]
	if !ok {
		return "", fmt.Errorf("%w: missing id", ErrMalformedWebhookPayload)
	}
	id, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: id is %T, want string", ErrMalformedWebhookPayload, raw)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: empty id", ErrMalformedWebhookPayload)
	}
	return id, nil
}
