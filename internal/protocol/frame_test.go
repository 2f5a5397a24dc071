package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_PriorityOrder(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Kind
	}{
		{
			name: "timestamped message",
			line: `{"time_stamp":"2025-01-02T15:04:05Z","message":"hi"}`,
			want: KindTimestamped,
		},
		{
			name: "token-bearing message",
			line: `{"accessToken":"abc","message":"hi"}`,
			want: KindAuthenticated,
		},
		{
			name: "refresh request",
			line: `{"refreshToken":"abc"}`,
			want: KindRefresh,
		},
		{
			name: "bare text line",
			line: `hello there`,
			want: KindBare,
		},
		{
			name: "json without known fields falls back to bare",
			line: `{"other":"field"}`,
			want: KindBare,
		},
		{
			name: "timestamp wins over access token",
			line: `{"time_stamp":"2025-01-02T15:04:05Z","message":"hi","accessToken":"abc"}`,
			want: KindTimestamped,
		},
		{
			name: "access token wins over refresh token",
			line: `{"accessToken":"abc","message":"hi","refreshToken":"def"}`,
			want: KindAuthenticated,
		},
		{
			name: "refresh token without message",
			line: `{"refreshToken":"abc","time_stamp":"2025-01-02T15:04:05Z"}`,
			want: KindRefresh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, _ := Classify(tt.line)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestClassify_BareKeepsRawLine(t *testing.T) {
	kind, f := Classify(`not { valid json`)
	require.Equal(t, KindBare, kind)
	assert.Equal(t, `not { valid json`, f.Message)
}

func TestServerPush_EscapesQuotes(t *testing.T) {
	now := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)

	line, err := ServerPush(now, `say "hello"`).Encode()
	require.NoError(t, err)

	assert.Contains(t, line, `\"hello\"`)

	var f Frame
	require.NoError(t, json.Unmarshal([]byte(line), &f))
	assert.Equal(t, `say "hello"`, f.Message)
	assert.Equal(t, "2025-01-02T15:04:05Z", f.TimeStamp)
}

func TestTokenPush_CarriesAccessToken(t *testing.T) {
	now := time.Now()
	f := TokenPush(now, "renewing", "new-token")
	assert.Equal(t, "new-token", f.AccessToken)
	assert.Equal(t, "renewing", f.Message)
}

func TestInstant_RoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	parsed, err := ParseInstant(FormatInstant(now))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(now))
}

func TestIsRejection(t *testing.T) {
	assert.True(t, IsRejection(AuthFailedMessage))
	assert.True(t, IsRejection("authentication FAILED"))
	assert.False(t, IsRejection("Welcome Alice! You are authenticated."))
}

func TestParseTokenPair(t *testing.T) {
	pair, ok := ParseTokenPair(`{"accessToken":"a","refreshToken":"r"}`)
	require.True(t, ok)
	assert.Equal(t, "a", pair.AccessToken)
	assert.Equal(t, "r", pair.RefreshToken)

	_, ok = ParseTokenPair(AuthFailedMessage)
	assert.False(t, ok)

	_, ok = ParseTokenPair(`{"accessToken":"a"}`)
	assert.False(t, ok)
}
