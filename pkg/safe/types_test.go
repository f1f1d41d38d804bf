package safe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const typedMessageJSON = `{
	"safe": "0x4f2083f5fBede34C2714aFfb3105539775f7FE64",
	"messageHash": "0xabc",
	"confirmations": [{"owner": "0x1", "signature": "0x01", "signatureType": "EOA"}],
	"message": {
		"types": {
			"EIP712Domain": [{"name": "name", "type": "string"}, {"name": "chainId", "type": "uint256"}],
			"Message": [{"name": "user", "type": "User"}, {"name": "metadata", "type": "Metadata"}]
		},
		"primaryType": "Message",
		"domain": {"name": "Hypercerts", "chainId": 11155111},
		"message": {"user": {"displayName": "Dana", "avatar": "https://example.com/a.png"}, "metadata": {"timestamp": 1717000000}}
	}
}`

func TestPayloadUnmarshalTyped(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(typedMessageJSON), &msg))

	assert.True(t, msg.Message.IsTyped())
	assert.Equal(t, "Message", msg.Message.Typed.PrimaryType)
	assert.Contains(t, msg.Message.Typed.Types, "EIP712Domain")
	user, ok := msg.Message.Typed.Message["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Dana", user["displayName"])
	assert.Len(t, msg.Confirmations, 1)
}

func TestPayloadUnmarshalString(t *testing.T) {
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(`"hello safe"`), &p))

	assert.False(t, p.IsTyped())
	assert.Equal(t, "hello safe", p.Text)
	assert.JSONEq(t, `"hello safe"`, string(p.Raw()))
}

func TestPayloadUnmarshalObjectWithoutTypes(t *testing.T) {
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(`{"message": {"user": {}}}`), &p))

	assert.False(t, p.IsTyped())
	assert.Empty(t, p.Text)
}

func TestPayloadUnmarshalNull(t *testing.T) {
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(`null`), &p))

	assert.False(t, p.IsTyped())
}

func TestPayloadUnmarshalMalformedTypedData(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "String Message", body: `{"types": {"Message": [{"name": "user", "type": "User"}]}, "message": "please update"}`},
		{name: "Types Not A Map", body: `{"types": "not-a-map", "message": {"user": {}}}`},
		{name: "Array Message", body: `{"types": {}, "message": [1, 2, 3]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg Message
			require.NoError(t, json.Unmarshal([]byte(`{"messageHash": "0xabc", "message": `+tt.body+`}`), &msg))

			// Still typed data; the shape is judged by whoever reads the message.
			assert.True(t, msg.Message.IsTyped())
			assert.JSONEq(t, tt.body, string(msg.Message.Raw()))
		})
	}

	t.Run("Non Object Message Is Dropped", func(t *testing.T) {
		var p Payload
		require.NoError(t, json.Unmarshal([]byte(tests[0].body), &p))

		assert.Nil(t, p.Typed.Message)
		assert.Contains(t, p.Typed.Types, "Message")
	})

	t.Run("Bad Types Are Dropped", func(t *testing.T) {
		var p Payload
		require.NoError(t, json.Unmarshal([]byte(tests[1].body), &p))

		assert.Empty(t, p.Typed.Types)
		assert.Contains(t, p.Typed.Message, "user")
	})
}

func TestPayloadMarshalRoundTripKeepsRaw(t *testing.T) {
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(`{"types":{},"message":{"a":1}}`), &p))

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"types":{},"message":{"a":1}}`, string(out))
}
