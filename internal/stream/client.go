package stream

import (
	"context"
	"errors"
	"strings"

	"prism-cli/internal/message"
)

// Client 定义模型后端接口：一次性补全与流式增量两种调用。
type Client interface {
	Complete(ctx context.Context, msgs []message.Message, model string) (string, error)
	Stream(ctx context.Context, msgs []message.Message, model string, onChunk func(string)) error
}

// EchoClient is a fallback when no API key is available.
type EchoClient struct {
	Prefix string
}

func (c EchoClient) Complete(_ context.Context, msgs []message.Message, _ string) (string, error) {
	if len(msgs) == 0 {
		return "", errors.New("no messages to echo")
	}
	last := msgs[len(msgs)-1]
	return c.Prefix + last.Content, nil
}

func (c EchoClient) Stream(ctx context.Context, msgs []message.Message, model string, onChunk func(string)) error {
	text, err := c.Complete(ctx, msgs, model)
	if err != nil {
		return err
	}
	// 按词切分模拟流式增量，便于无后端时演示揭示动画。
	words := strings.SplitAfter(text, " ")
	for _, w := range words {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if w != "" {
			onChunk(w)
		}
	}
	return nil
}
