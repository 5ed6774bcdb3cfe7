package valueobjects

import (
	"encoding/json"

	"composer-backend/domain/schema"
)

// PayloadVersion is the current version of the payload envelope format.
// Saved blobs carry this tag so that future format changes can be migrated
// instead of silently misread.
const PayloadVersion = 1

// payloadEnvelope wraps a node-type-specific payload with its schema
// version and the node type it was written for
type payloadEnvelope struct {
	Version int             `json:"version"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

// TextInputPayload is the payload for text input nodes
type TextInputPayload struct {
	Text string `json:"text"`
}

// TextGenerationPayload is the payload for text generation nodes
type TextGenerationPayload struct {
	Model        string  `json:"model"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
}

// ImageGenerationPayload is the payload for image generation nodes
type ImageGenerationPayload struct {
	Model string `json:"model"`
	Size  string `json:"size,omitempty"`
}

// SpeechSynthesisPayload is the payload for speech synthesis nodes
type SpeechSynthesisPayload struct {
	Voice string `json:"voice"`
}

// TriggerPayload is the payload for trigger nodes
type TriggerPayload struct {
	Mode string `json:"mode"`
}

// PreviewPayload is the payload for preview output nodes
type PreviewPayload struct {
	Collapsed bool `json:"collapsed,omitempty"`
}

// EncodePayload serializes a node-type-specific payload into a versioned blob
func EncodePayload(nodeType schema.NodeType, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(payloadEnvelope{
		Version: PayloadVersion,
		Kind:    string(nodeType),
		Data:    data,
	})
}

// DecodePayload parses a payload blob written for the given node type.
// A missing blob, a version or kind mismatch, or malformed JSON all yield
// ok=false; callers fall back to zero values. Decode failures are never
// fatal.
func DecodePayload[T any](blob []byte, nodeType schema.NodeType) (T, bool) {
	var zero T
	if len(blob) == 0 {
		return zero, false
	}

	var env payloadEnvelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return zero, false
	}
	if env.Version != PayloadVersion || env.Kind != string(nodeType) {
		return zero, false
	}

	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return zero, false
	}
	return out, true
}
