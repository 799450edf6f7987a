package llm

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name string
}

func (f *fakeProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i)}
	}
	return out, nil
}

func (f *fakeProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return []float32{1}, nil
}

func (f *fakeProvider) Chat(ctx context.Context, messages []Message, opts *GenOptions) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages")
	}
	return "reply to " + messages[len(messages)-1].Content, nil
}

func (f *fakeProvider) ChatStream(ctx context.Context, messages []Message, opts *GenOptions, fn StreamFunc) error {
	for _, part := range []string{"hello", " ", "world"} {
		if err := fn(part); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeProvider) Name() string { return f.name }

func TestRegisterAndNewProvider(t *testing.T) {
	RegisterProvider("fake-full", func(config map[string]any) (Provider, error) {
		return &fakeProvider{name: "fake-full"}, nil
	})

	p, err := NewProvider("fake-full", nil)
	require.NoError(t, err)
	assert.Equal(t, "fake-full", p.Name())

	_, err = NewProvider("does-not-exist", nil)
	require.Error(t, err)
}

func TestNewEmbeddingProviderFallsBackToFullProvider(t *testing.T) {
	RegisterProvider("fake-embed-fallback", func(config map[string]any) (Provider, error) {
		return &fakeProvider{name: "fake-embed-fallback"}, nil
	})

	p, err := NewEmbeddingProvider("fake-embed-fallback", nil)
	require.NoError(t, err)

	embeddings, err := p.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, embeddings, 2)
}

func TestNewChatProviderPrefersDedicatedFactory(t *testing.T) {
	RegisterProvider("fake-dual", func(config map[string]any) (Provider, error) {
		return &fakeProvider{name: "full"}, nil
	})
	RegisterChatProvider("fake-dual", func(config map[string]any) (ChatProvider, error) {
		return &fakeProvider{name: "chat-only"}, nil
	})

	p, err := NewChatProvider("fake-dual", nil)
	require.NoError(t, err)
	assert.Equal(t, "chat-only", p.Name())
}

func TestChatStreamAbortsOnCallbackError(t *testing.T) {
	p := &fakeProvider{name: "fake"}

	var got []string
	err := p.ChatStream(context.Background(), nil, nil, func(content string) error {
		got = append(got, content)
		if len(got) == 2 {
			return fmt.Errorf("stop")
		}
		return nil
	})
	require.Error(t, err)
	assert.Len(t, got, 2)
}

func TestListProviders(t *testing.T) {
	RegisterProvider("fake-list", func(config map[string]any) (Provider, error) {
		return &fakeProvider{name: "fake-list"}, nil
	})

	names := ListProviders()
	assert.Contains(t, names, "fake-list")
}
