package natsutil

import (
	"encoding/json"
	"testing"

	"github.com/nats-io/nats.go"
)

type loadedEvent struct {
	Count int    `json:"count"`
	Model string `json:"model"`
}

func TestNatsHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	carrier := (*natsHeaderCarrier)(msg)

	carrier.Set("traceparent", "00-abc-def-01")
	if got := carrier.Get("traceparent"); got != "00-abc-def-01" {
		t.Fatalf("expected traceparent, got %q", got)
	}

	keys := carrier.Keys()
	if len(keys) != 1 {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestNatsHeaderCarrierNilHeader(t *testing.T) {
	msg := &nats.Msg{}
	carrier := (*natsHeaderCarrier)(msg)

	if got := carrier.Get("missing"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if keys := carrier.Keys(); keys != nil {
		t.Fatalf("expected nil keys, got %v", keys)
	}
}

func TestEventRoundTrip(t *testing.T) {
	data, err := json.Marshal(loadedEvent{Count: 42, Model: "nomic-embed-text"})
	if err != nil {
		t.Fatal(err)
	}

	var decoded loadedEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Count != 42 || decoded.Model != "nomic-embed-text" {
		t.Fatalf("unexpected: %+v", decoded)
	}
}
