package schema

import (
	"chat-garden/domain"
	"chat-garden/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCueValidator_Message_Schema(t *testing.T) {
	req := require.New(t)
	match, err := NewCueValidator().Compile(domain.MessageSchema)
	req.NoError(err)

	tests := []struct {
		name  string
		value map[string]any
		want  bool
	}{
		{"Complete message", map[string]any{"content": "hi", "published": float64(1700000000000)}, true},
		{"Extra fields are allowed", map[string]any{"content": "hi", "published": int64(1), "edited": true}, true},
		{"Missing published", map[string]any{"content": "hi"}, false},
		{"Wrong content type", map[string]any{"content": 42, "published": 1}, false},
		{"Empty value", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, match(tt.value))
		})
	}
}

func TestCueValidator_Const_Fields(t *testing.T) {
	req := require.New(t)
	match, err := NewCueValidator().Compile(domain.ProfileSchema("alice"))
	req.NoError(err)

	req.True(match(map[string]any{"describes": "alice", "published": 3, "name": "Alice"}))
	req.False(match(map[string]any{"describes": "bob", "published": 3}))
	req.False(match(map[string]any{"describes": "alice"}))
	req.False(match(map[string]any{"published": 3}))
}

func TestCueValidator_Tag_Activity_Schema(t *testing.T) {
	req := require.New(t)
	match, err := NewCueValidator().Compile(domain.TagActivitySchema("", "urgent"))
	req.NoError(err)

	activity := domain.TagRecord{MessageID: "garden:bob:1", Tag: "urgent", Published: 1}.ActivityValue()
	req.True(match(activity))

	activity["tag"] = "later"
	req.False(match(activity))

	delete(activity, "activity")
	activity["tag"] = "urgent"
	req.False(match(activity))
}

func TestCueValidator_Any_And_Invalid(t *testing.T) {
	req := require.New(t)
	validator := NewCueValidator()

	match, err := validator.Compile("")
	req.NoError(err)
	req.True(match(map[string]any{"whatever": []any{"a", 1.0}}))

	_, err = validator.Compile("{content: ")
	req.ErrorIs(err, errors.ErrInvalidSchema)
}
