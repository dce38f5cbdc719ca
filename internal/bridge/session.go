package bridge

import (
	"net/http"
	"sync"

	"github.com/gaspardpetit/mcpipe/internal/logx"
	"github.com/gaspardpetit/mcpipe/internal/metrics"
)

// headerSessionID is the HTTP header carrying the server-issued session token.
const headerSessionID = "Mcp-Session-Id"

// Session tracks the session token issued by the remote endpoint. It starts
// unestablished; the first response carrying the session header establishes
// it, and the captured value then rides every outbound call verbatim for the
// rest of the process lifetime. Later responses never replace or clear it.
// Each bridge instance owns its own Session, so tokens are never shared
// across instances.
type Session struct {
	mu    sync.Mutex
	token string
}

// Token returns the current session token, if established.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// Observe captures the session header from an upstream response, if present.
func (s *Session) Observe(h http.Header) {
	v := h.Get(headerSessionID)
	if v == "" {
		return
	}
	s.mu.Lock()
	if s.token != "" {
		s.mu.Unlock()
		return
	}
	s.token = v
	s.mu.Unlock()
	logx.Log.Debug().Msg("upstream session established")
	metrics.SetSessionEstablished(true)
}

// Established reports whether a session token has been captured.
func (s *Session) Established() bool {
	_, ok := s.Token()
	return ok
}
