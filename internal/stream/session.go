package stream

import (
	"context"
	"strings"
	"sync"

	"prism-cli/internal/events"
	"prism-cli/internal/logger"
	"prism-cli/internal/message"

	"github.com/google/uuid"
)

var log = logger.Named("stream")

// Session 把模型后端的流式输出转成事件总线上的增量：
// chunk → 提升检查 → final。每条进行中的消息独立一个 goroutine。
type Session struct {
	client Client
	model  string
	bus    *events.Bus

	mu     sync.Mutex
	cancel map[string]context.CancelFunc
}

func NewSession(client Client, model string, bus *events.Bus) *Session {
	return &Session{
		client: client,
		model:  model,
		bus:    bus,
		cancel: map[string]context.CancelFunc{},
	}
}

// Send 基于给定历史发起一轮流式补全，返回新助手消息的 ID。
// 事件异步发布到总线；调用方通过订阅消费。
func (s *Session) Send(ctx context.Context, history []message.Message) string {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel[id] = cancel
	s.mu.Unlock()

	go s.run(ctx, id, append([]message.Message{}, history...))
	return id
}

// Cancel 中止一条进行中的消息。
func (s *Session) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancel[id]; ok {
		cancel()
		delete(s.cancel, id)
	}
}

func (s *Session) run(ctx context.Context, id string, history []message.Message) {
	defer func() {
		s.mu.Lock()
		delete(s.cancel, id)
		s.mu.Unlock()
	}()

	var sb strings.Builder
	var blocks []message.MediaBlock
	processed := 0

	err := s.client.Stream(ctx, history, s.model, func(chunk string) {
		sb.WriteString(chunk)
		s.bus.Publish(events.New(events.TypeStreamChunk, events.StreamChunk{
			MessageID: id,
			Text:      chunk,
		}))

		promoted, next := Promote(sb.String(), processed)
		if len(promoted) == 0 {
			return
		}
		blocks = append(blocks, promoted...)
		processed = next
		// 发布快照副本：备忘门用切片同一性判断媒体块是否变化。
		s.bus.Publish(events.New(events.TypeBlocksPromoted, events.BlocksPromoted{
			MessageID:           id,
			Blocks:              append([]message.MediaBlock{}, blocks...),
			ProcessedTextLength: processed,
		}))
	})
	if err != nil {
		log.WithField("message_id", id).Warnf("stream failed: %v", err)
		s.bus.Publish(events.New(events.TypeStreamError, events.StreamError{
			MessageID: id,
			Err:       err.Error(),
		}))
		return
	}

	s.bus.Publish(events.New(events.TypeStreamFinal, events.StreamFinal{
		MessageID: id,
		Content:   strings.TrimSpace(sb.String()),
	}))
}
