package events

import "testing"

func TestBusPublishSubscribe(t *testing.T) {
	b := NewBus()
	sub := b.Subscribe()
	b.Publish(New(TypeStreamChunk, StreamChunk{MessageID: "m1", Text: "hi"}))
	evt := <-sub
	if evt.Type != TypeStreamChunk {
		t.Fatalf("unexpected event type %q", evt.Type)
	}
	chunk, ok := evt.Payload.(StreamChunk)
	if !ok || chunk.Text != "hi" {
		t.Fatalf("unexpected payload %+v", evt.Payload)
	}
}

func TestBusCloseDrainsSubscribers(t *testing.T) {
	b := NewBus()
	sub := b.Subscribe()
	b.Close()
	if _, ok := <-sub; ok {
		t.Fatalf("expected closed channel")
	}
	// Close 后的订阅立即返回已关闭通道。
	late := b.Subscribe()
	if _, ok := <-late; ok {
		t.Fatalf("expected closed channel for late subscriber")
	}
	b.Publish(New(TypeStreamFinal, StreamFinal{}))
}
