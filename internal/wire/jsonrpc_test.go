package wire

import (
	"encoding/json"
	"testing"
)

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"jsonrpc":"2.0","id":7,"method":"tools/list","params":{}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if string(req.ID) != "7" || req.Method != "tools/list" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestParseRequestMalformed(t *testing.T) {
	if _, err := ParseRequest([]byte(`{"jsonrpc":`)); err == nil {
		t.Fatalf("expected error for malformed input")
	}
}

func TestErrorResponseNullID(t *testing.T) {
	got := string(ErrorResponse(nil, CodeParseError, "parse error"))
	want := `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"parse error"}}`
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestErrorResponseKeepsID(t *testing.T) {
	got := string(ErrorResponse(json.RawMessage(`"abc"`), CodeTransportError, "boom"))
	want := `{"jsonrpc":"2.0","id":"abc","error":{"code":-32000,"message":"boom"}}`
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestIDsEqual(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{`1`, `1`, true},
		{`1`, ` 1`, true},
		{`1`, `2`, false},
		{`"x"`, `"x"`, true},
		{`"1"`, `1`, false},
		{`null`, ``, true},
		{``, ``, true},
		{`1`, ``, false},
	}
	for _, c := range cases {
		if got := IDsEqual(json.RawMessage(c.a), json.RawMessage(c.b)); got != c.want {
			t.Errorf("IDsEqual(%q, %q) = %v want %v", c.a, c.b, got, c.want)
		}
	}
}
