package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatMessage_PayloadRoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		payload Payload
		fields  map[string]any
	}{
		{"text", TextPayload{Content: "hi"}, map[string]any{"content": "hi"}},
		{"audio", AudioPayload{File: "chat/AUDIO_1.ogg"}, map[string]any{"file": "chat/AUDIO_1.ogg"}},
		{"image", ImagePayload{File: "chat/IMAGE_1.png"}, map[string]any{"file": "chat/IMAGE_1.png"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var m ChatMessage
			require.NoError(t, m.SetPayload(tc.payload))
			assert.Equal(t, tc.payload.Kind(), m.Kind)

			got, err := m.Payload()
			require.NoError(t, err)
			assert.Equal(t, tc.payload, got)
			assert.Equal(t, tc.fields, got.Fields())
		})
	}
}

func TestChatMessage_InvalidPayload(t *testing.T) {
	var m ChatMessage
	assert.ErrorIs(t, m.SetPayload(AudioPayload{}), ErrInvalidPayload)
	assert.ErrorIs(t, m.SetPayload(ImagePayload{}), ErrInvalidPayload)
	assert.ErrorIs(t, m.SetPayload(nil), ErrInvalidPayload)

	// 两列同时有值
	bad := ChatMessage{Kind: PayloadImage, Content: "x", FileRef: "chat/a.png"}
	_, err := bad.Payload()
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = (&ChatMessage{Kind: "video"}).Payload()
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 7, 8, 9, 0, time.UTC)
	assert.Equal(t, "05/03/2024, 07:08:09", FormatTimestamp(ts))
}

func TestCourse_IsOwner(t *testing.T) {
	var nilCourse *Course
	c := &Course{}
	assert.True(t, c.IsOwner(c.OwnerID))
	assert.False(t, nilCourse.IsOwner(c.OwnerID))
	assert.Equal(t, "", (*User)(nil).String())
}
