package apperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOfUnwrapsTypedError(t *testing.T) {
	err := Storage(errors.New("disk full"), "failed to write api row")
	require.Equal(t, KindStorage, KindOf(err))
	require.False(t, IsRetryable(err))
}

func TestKindOfDefaultsToInternal(t *testing.T) {
	require.Equal(t, KindInternal, KindOf(errors.New("plain error")))
}

func TestTimeoutIsRetryable(t *testing.T) {
	err := Timeout("query exceeded %dms budget", 100)
	require.True(t, IsRetryable(err))
	require.Equal(t, KindTimeout, KindOf(err))
}

func TestWithCorrelationID(t *testing.T) {
	err := NotFound("schema", "Ghost")
	tagged := err.WithCorrelationID("req-123")
	require.Equal(t, "req-123", tagged.CorrelationID())
	require.Empty(t, err.CorrelationID())
}

func TestHintMatchesKnownSubstrings(t *testing.T) {
	require.Contains(t, Hint("open spec.yaml: no such file or directory"), "path")
	require.Contains(t, Hint("permission denied"), "permission")
	require.Contains(t, Hint("invalid character '}' looking for next key in JSON"), "JSON")
	require.Empty(t, Hint("something entirely unrelated"))
}

func TestUserMessageComposesHintAndCorrelationID(t *testing.T) {
	err := Input(nil, "could not open spec.yaml: no such file or directory")
	msg := UserMessage(err, "req-456")
	require.Contains(t, msg, "suggestion:")
	require.Contains(t, msg, "req-456")
}

func TestNewCorrelationIDIsShortAndUnique(t *testing.T) {
	a := NewCorrelationID()
	b := NewCorrelationID()
	require.Len(t, a, 8)
	require.NotEqual(t, a, b)
}
