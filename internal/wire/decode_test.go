package wire

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodePlainJSON(t *testing.T) {
	body := []byte("{\n  \"jsonrpc\": \"2.0\",\n  \"id\": 1,\n  \"result\": {\"ok\": true}\n}\n")
	got, err := Decode("application/json", body, json.RawMessage(`1`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := `{"jsonrpc":"2.0","id":1,"result":{"ok":true}}`
	if string(got) != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestDecodeJSONMalformed(t *testing.T) {
	if _, err := Decode("application/json", []byte("not json"), nil); err == nil {
		t.Fatalf("expected decode failure")
	}
}

func TestDecodeSSESingleEventMatchesPlainJSON(t *testing.T) {
	payload := `{"jsonrpc":"2.0","id":1,"result":{"ok":true}}`
	sse := "data: " + payload + "\n\n"
	fromSSE, err := Decode("text/event-stream", []byte(sse), json.RawMessage(`1`))
	if err != nil {
		t.Fatalf("decode sse: %v", err)
	}
	fromJSON, err := Decode("application/json", []byte(payload), json.RawMessage(`1`))
	if err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if string(fromSSE) != string(fromJSON) {
		t.Fatalf("sse %s != json %s", fromSSE, fromJSON)
	}
}

func TestDecodeSSEContentTypeWithCharset(t *testing.T) {
	sse := "data: {\"jsonrpc\":\"2.0\",\"id\":3,\"result\":{}}\n\n"
	got, err := Decode("text/event-stream; charset=utf-8", []byte(sse), json.RawMessage(`3`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(got) != `{"jsonrpc":"2.0","id":3,"result":{}}` {
		t.Fatalf("unexpected payload: %s", got)
	}
}

func TestDecodeSSESkipsNotificationEvents(t *testing.T) {
	sse := "data: {\"jsonrpc\":\"2.0\",\"method\":\"notifications/progress\",\"params\":{\"progress\":1}}\n\n" +
		"data: {\"jsonrpc\":\"2.0\",\"id\":2,\"result\":{}}\n\n"
	got, err := Decode("text/event-stream", []byte(sse), json.RawMessage(`2`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(got) != `{"jsonrpc":"2.0","id":2,"result":{}}` {
		t.Fatalf("unexpected payload: %s", got)
	}
}

func TestDecodeSSEMultiLineData(t *testing.T) {
	// the SSE line-folding rule joins consecutive data lines with a newline
	sse := "data: {\"jsonrpc\":\"2.0\",\ndata: \"id\":5,\"result\":{}}\n\n"
	got, err := Decode("text/event-stream", []byte(sse), json.RawMessage(`5`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var resp Response
	if err := json.Unmarshal(got, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(resp.ID) != "5" || resp.Result == nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestDecodeSSEUnterminatedFinalEvent(t *testing.T) {
	sse := "data: {\"jsonrpc\":\"2.0\",\"id\":4,\"result\":{}}"
	got, err := Decode("text/event-stream", []byte(sse), json.RawMessage(`4`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(got) != `{"jsonrpc":"2.0","id":4,"result":{}}` {
		t.Fatalf("unexpected payload: %s", got)
	}
}

func TestDecodeSSEIgnoresNonDataFields(t *testing.T) {
	sse := ": keep-alive\nevent: message\nid: 9\ndata: {\"jsonrpc\":\"2.0\",\"id\":6,\"result\":{}}\n\n"
	got, err := Decode("text/event-stream", []byte(sse), json.RawMessage(`6`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(got) != `{"jsonrpc":"2.0","id":6,"result":{}}` {
		t.Fatalf("unexpected payload: %s", got)
	}
}

func TestDecodeSSENoMatchingEvent(t *testing.T) {
	sse := "data: {\"jsonrpc\":\"2.0\",\"method\":\"notifications/progress\"}\n\n"
	_, err := Decode("text/event-stream", []byte(sse), json.RawMessage(`1`))
	if !errors.Is(err, ErrNoMatchingEvent) {
		t.Fatalf("expected ErrNoMatchingEvent, got %v", err)
	}
}

func TestDecodeSSEMalformedEventPayload(t *testing.T) {
	sse := "data: {broken\n\n"
	_, err := Decode("text/event-stream", []byte(sse), json.RawMessage(`1`))
	if err == nil || errors.Is(err, ErrNoMatchingEvent) {
		t.Fatalf("expected malformed payload error, got %v", err)
	}
}
