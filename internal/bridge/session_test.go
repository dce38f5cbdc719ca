package bridge

import (
	"net/http"
	"testing"
)

func TestSessionLifecycle(t *testing.T) {
	var s Session
	if _, ok := s.Token(); ok {
		t.Fatalf("expected unestablished session")
	}

	h := http.Header{}
	h.Set("Mcp-Session-Id", "abc123")
	s.Observe(h)
	tok, ok := s.Token()
	if !ok || tok != "abc123" {
		t.Fatalf("token not captured: %q %v", tok, ok)
	}

	// absence of the header never clears an established token
	s.Observe(http.Header{})
	if tok, _ := s.Token(); tok != "abc123" {
		t.Fatalf("token cleared: %q", tok)
	}

	// a later header never replaces an established token
	h2 := http.Header{}
	h2.Set("Mcp-Session-Id", "def456")
	s.Observe(h2)
	if tok, _ := s.Token(); tok != "abc123" {
		t.Fatalf("token replaced: %q", tok)
	}
}
