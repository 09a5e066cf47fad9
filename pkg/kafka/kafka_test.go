package kafka

import (
	"math"
	"testing"
)

type queryEvent struct {
	Kind string `json:"kind"`
	N    int    `json:"n"`
}

func TestEncodeKeepsOrderAndKeys(t *testing.T) {
	msgs, err := encode([]Event{
		{Key: "genre", Value: queryEvent{Kind: "genre", N: 5}},
		{Key: "user", Value: queryEvent{Kind: "user", N: 3}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if string(msgs[0].Key) != "genre" || string(msgs[1].Key) != "user" {
		t.Errorf("unexpected keys %q, %q", msgs[0].Key, msgs[1].Key)
	}
	got, err := DecodeJSON[queryEvent](msgs[1].Value)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != "user" || got.N != 3 {
		t.Errorf("expected user/3, got %+v", got)
	}
}

func TestEncodeRejectsUnencodableValue(t *testing.T) {
	if _, err := encode([]Event{{Key: "bad", Value: math.NaN()}}); err == nil {
		t.Error("expected error for NaN value")
	}
}

func TestDecodeJSONError(t *testing.T) {
	if _, err := DecodeJSON[queryEvent]([]byte("{not json")); err == nil {
		t.Error("expected decode error")
	}
}
