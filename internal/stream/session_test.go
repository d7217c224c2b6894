package stream

import (
	"context"
	"strings"
	"testing"
	"time"

	"prism-cli/internal/events"
	"prism-cli/internal/message"
)

// scriptedClient 按给定切片逐块回放，模拟带围栏的流式输出。
type scriptedClient struct {
	chunks []string
}

func (c scriptedClient) Complete(context.Context, []message.Message, string) (string, error) {
	return strings.Join(c.chunks, ""), nil
}

func (c scriptedClient) Stream(ctx context.Context, _ []message.Message, _ string, onChunk func(string)) error {
	for _, chunk := range c.chunks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		onChunk(chunk)
	}
	return nil
}

func TestSessionPublishesChunksAndFinal(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Subscribe()
	s := NewSession(EchoClient{Prefix: "echo: "}, "", bus)

	id := s.Send(context.Background(), []message.Message{message.NewUser("hello world")})
	if id == "" {
		t.Fatalf("expected message id")
	}

	var chunks int
	var final string
	deadline := time.After(2 * time.Second)
	for final == "" {
		select {
		case evt := <-sub:
			switch p := evt.Payload.(type) {
			case events.StreamChunk:
				if p.MessageID != id {
					t.Fatalf("chunk for unknown message %q", p.MessageID)
				}
				chunks++
			case events.StreamFinal:
				final = p.Content
			}
		case <-deadline:
			t.Fatalf("timed out waiting for final event")
		}
	}
	if chunks == 0 {
		t.Fatalf("expected at least one chunk")
	}
	if final != "echo: hello world" {
		t.Fatalf("unexpected final content %q", final)
	}
}

func TestSessionPromotionCoversAllProse(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Subscribe()
	client := scriptedClient{chunks: []string{
		"intro\n```python\nprint(1)\n",
		"```\nAll done.",
	}}
	s := NewSession(client, "", bus)
	id := s.Send(context.Background(), []message.Message{message.NewUser("go")})

	var promoted events.BlocksPromoted
	var final events.StreamFinal
	deadline := time.After(2 * time.Second)
	for final.MessageID == "" {
		select {
		case evt := <-sub:
			switch p := evt.Payload.(type) {
			case events.BlocksPromoted:
				promoted = p
			case events.StreamFinal:
				final = p
			}
		case <-deadline:
			t.Fatalf("timed out waiting for final event")
		}
	}

	if promoted.MessageID != id || len(promoted.Blocks) == 0 {
		t.Fatalf("expected promoted blocks for %q, got %+v", id, promoted)
	}
	full := strings.Join(client.chunks, "")
	if promoted.ProcessedTextLength >= len(full) {
		t.Fatalf("promoter must stop at the last closed fence, got %d of %d", promoted.ProcessedTextLength, len(full))
	}
	// 终态正文必须包含提升未覆盖的尾部散文，渲染侧以此补齐。
	tail := strings.TrimSpace(full[promoted.ProcessedTextLength:])
	if tail == "" || !strings.Contains(final.Content, tail) {
		t.Fatalf("final content %q must carry the unpromoted tail %q", final.Content, tail)
	}
}
