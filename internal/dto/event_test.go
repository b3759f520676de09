package dto_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-classroom/internal/dto"
)

func TestParseInbound(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    dto.EventType
		wantErr bool
	}{
		{name: "chat", raw: `{"type":"chat","data":{"room_id":"x"}}`, want: dto.EventChat},
		{name: "announcement is structurally valid", raw: `{"type":"announcement","data":{}}`, want: dto.EventAnnouncement},
		{name: "extra top-level fields ignored", raw: `{"type":"question_comment","data":{},"extra":1}`, want: dto.EventQuestionComment},
		{name: "unknown type", raw: `{"type":"bogus","data":{}}`, wantErr: true},
		{name: "missing type", raw: `{"data":{}}`, wantErr: true},
		{name: "missing data", raw: `{"type":"chat"}`, wantErr: true},
		{name: "null data", raw: `{"type":"chat","data":null}`, wantErr: true},
		{name: "array data", raw: `{"type":"chat","data":[1,2]}`, wantErr: true},
		{name: "string data", raw: `{"type":"chat","data":"hi"}`, wantErr: true},
		{name: "not json", raw: `hello`, wantErr: true},
		{name: "type not a string", raw: `{"type":5,"data":{}}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := dto.ParseInbound([]byte(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, dto.ErrInvalidEnvelope)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev.Type)
		})
	}
}

func TestErrorEvent_Encoding(t *testing.T) {
	ev := dto.ErrorEvent(dto.MsgValidationFailed)
	assert.True(t, ev.IsError())

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","data":"Error validating request"}`, string(b))
}

func TestPublishRequest_Validate(t *testing.T) {
	assert.NoError(t, dto.PublishRequest{Type: dto.EventAnnouncement, Data: map[string]any{"subject": "s"}}.Validate())
	assert.ErrorIs(t, dto.PublishRequest{Type: "bogus", Data: map[string]any{}}.Validate(), dto.ErrInvalidEnvelope)
	assert.ErrorIs(t, dto.PublishRequest{Type: dto.EventQuestion}.Validate(), dto.ErrInvalidEnvelope)
}
