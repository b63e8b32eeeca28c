package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name    string
	content string
	err     error
	calls   int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	s.calls++
	return s.content, s.err
}

func TestChain_FirstProviderWins(t *testing.T) {
	first := &stubProvider{name: "groq", content: "hello"}
	second := &stubProvider{name: "openrouter", content: "unused"}
	chain := NewChain(first, second)

	got, err := chain.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, 0, second.calls)
}

func TestChain_FailsOverInOrder(t *testing.T) {
	var failed []string
	first := &stubProvider{name: "groq", err: errors.New("rate limited")}
	second := &stubProvider{name: "openrouter", content: "fallback answer"}
	chain := NewChain(first, second)
	chain.OnFailover(func(p string) { failed = append(failed, p) })

	got, err := chain.Complete(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "fallback answer", got)
	assert.Equal(t, []string{"groq"}, failed)
}

func TestChain_AllFail(t *testing.T) {
	lastErr := errors.New("model overloaded")
	chain := NewChain(
		&stubProvider{name: "a", err: errors.New("boom")},
		&stubProvider{name: "b", err: lastErr},
	)

	_, err := chain.Complete(context.Background(), nil)
	assert.ErrorIs(t, err, lastErr)
}

func TestChain_Empty(t *testing.T) {
	chain := NewChain()
	assert.False(t, chain.Available())

	_, err := chain.Complete(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoProvider)
}
