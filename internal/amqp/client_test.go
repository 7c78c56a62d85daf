package amqp

import (
	"testing"
	"time"
)

func TestTransactionEventRoundTrip(t *testing.T) {
	msg := NewTransactionEvent("t1", ActionUpdated)
	if msg.ID != "t1" || msg.Action != ActionUpdated {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if time.Since(msg.Timestamp) > time.Minute {
		t.Fatalf("timestamp not set: %v", msg.Timestamp)
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	got, err := TransactionEventFromJSON(body)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if got.ID != msg.ID || got.Action != msg.Action {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, msg)
	}
}

func TestTransactionEventFromJSONRejectsGarbage(t *testing.T) {
	if _, err := TransactionEventFromJSON([]byte("{broken")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
