package messaging

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
)

func TestEncodeDecodeEvent(t *testing.T) {
	e := entity.NewEvent(entity.EventUserRegistered, map[string]any{"email": "a@b.co"})
	msg, err := encodeEvent(e)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if msg.DeliveryMode != amqp.Persistent || msg.ContentType != "application/json" {
		t.Fatalf("unexpected publishing %+v", msg)
	}
	if msg.Type != "user.registered" {
		t.Fatalf("unexpected type header %q", msg.Type)
	}

	got, err := DecodeEvent(msg.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != e.Type || got.Data["email"] != "a@b.co" {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	if _, err := DecodeEvent([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid json")
	}
	if _, err := DecodeEvent([]byte(`{"data":{}}`)); err == nil {
		t.Fatal("expected error for missing type")
	}
}
