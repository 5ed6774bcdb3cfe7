package valueobjects

import (
	"testing"

	"composer-backend/domain/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadRoundTrip(t *testing.T) {
	original := TextInputPayload{Text: "hello world"}

	blob, err := EncodePayload(schema.NodeTypeTextInput, original)
	require.NoError(t, err)

	decoded, ok := DecodePayload[TextInputPayload](blob, schema.NodeTypeTextInput)
	require.True(t, ok)
	assert.Equal(t, original, decoded)
}

func TestPayloadRoundTripGeneration(t *testing.T) {
	original := TextGenerationPayload{
		Model:        "small-v2",
		SystemPrompt: "be brief",
		Temperature:  0.7,
	}

	blob, err := EncodePayload(schema.NodeTypeTextGeneration, original)
	require.NoError(t, err)

	decoded, ok := DecodePayload[TextGenerationPayload](blob, schema.NodeTypeTextGeneration)
	require.True(t, ok)
	assert.Equal(t, original, decoded)
}

func TestDecodeMismatchedKind(t *testing.T) {
	blob, err := EncodePayload(schema.NodeTypeTextInput, TextInputPayload{Text: "x"})
	require.NoError(t, err)

	_, ok := DecodePayload[TextGenerationPayload](blob, schema.NodeTypeTextGeneration)
	assert.False(t, ok, "decoding against the wrong node type must fail softly")
}

func TestDecodeMalformedBlob(t *testing.T) {
	_, ok := DecodePayload[TextInputPayload]([]byte("{not json"), schema.NodeTypeTextInput)
	assert.False(t, ok)

	_, ok = DecodePayload[TextInputPayload](nil, schema.NodeTypeTextInput)
	assert.False(t, ok)

	_, ok = DecodePayload[TextInputPayload]([]byte(`"just a string"`), schema.NodeTypeTextInput)
	assert.False(t, ok)
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	blob := []byte(`{"version":99,"kind":"text_input","data":{"text":"x"}}`)
	_, ok := DecodePayload[TextInputPayload](blob, schema.NodeTypeTextInput)
	assert.False(t, ok)
}
