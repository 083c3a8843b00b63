package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		msgType MessageType
		payload any
	}{
		{
			name:    "nil payload",
			msgType: MsgPing,
			payload: nil,
		},
		{
			name:    "with PingPayload",
			msgType: MsgPing,
			payload: PingPayload{Timestamp: 12345},
		},
		{
			name:    "with SubmitAnswerPayload",
			msgType: MsgSubmitAnswer,
			payload: SubmitAnswerPayload{Code: "1234", Answer: "كذبة"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg, err := NewMessage(tt.msgType, tt.payload)
			require.NoError(t, err)
			require.NotNil(t, msg)
			assert.Equal(t, tt.msgType, msg.Type)
			if tt.payload == nil {
				assert.Nil(t, msg.Payload)
			} else {
				assert.NotNil(t, msg.Payload)
			}
		})
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{"type": "ping", payload}`))
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	msg := MustNewMessage(MsgJoinRoom, JoinRoomPayload{Code: "1234", Name: "سارة"})
	data, err := Encode(msg)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, MsgJoinRoom, decoded.Type)

	payload, err := ParsePayload[JoinRoomPayload](decoded)
	require.NoError(t, err)
	assert.Equal(t, "1234", payload.Code)
	assert.Equal(t, "سارة", payload.Name)
}

func TestParsePayloadEmpty(t *testing.T) {
	t.Parallel()

	msg := &Message{Type: MsgLeave}
	payload, err := ParsePayload[RoomCodePayload](msg)
	require.NoError(t, err)
	assert.Empty(t, payload.Code)
}

func TestNewErrorMessageCarriesArabicText(t *testing.T) {
	t.Parallel()

	msg := NewErrorMessage(ErrCodeRoomNotFound)
	payload, err := ParsePayload[ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, ErrCodeRoomNotFound, payload.Code)
	assert.Equal(t, ErrorMessages[ErrCodeRoomNotFound], payload.Message)
}
