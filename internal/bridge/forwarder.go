package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gaspardpetit/mcpipe/internal/logx"
	"github.com/gaspardpetit/mcpipe/internal/metrics"
	"github.com/gaspardpetit/mcpipe/internal/wire"
)

// Forwarder performs one upstream HTTP round trip per JSON-RPC request. It
// never returns an error: every failure is folded into a JSON-RPC error
// response so the loop always writes exactly one line per input line.
type Forwarder struct {
	endpoint  string
	authToken string
	timeout   time.Duration
	client    *http.Client
	session   *Session
}

// NewForwarder constructs a Forwarder posting to the given endpoint.
func NewForwarder(endpoint, authToken string, timeout time.Duration, session *Session) *Forwarder {
	return &Forwarder{
		endpoint:  endpoint,
		authToken: authToken,
		timeout:   timeout,
		client:    &http.Client{},
		session:   session,
	}
}

// Forward posts one request line upstream and returns the response line to
// write locally. The request body is the input line verbatim; the id is only
// used for error synthesis and response validation.
func (f *Forwarder) Forward(ctx context.Context, id json.RawMessage, raw []byte) json.RawMessage {
	start := time.Now()
	out, outcome := f.roundTrip(ctx, id, raw)
	metrics.RecordRequest(outcome)
	metrics.ObserveRequestDuration(time.Since(start))
	return out
}

func (f *Forwarder) roundTrip(ctx context.Context, id json.RawMessage, raw []byte) (json.RawMessage, string) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(raw))
	if err != nil {
		return wire.ErrorResponse(id, wire.CodeTransportError, err.Error()), metrics.OutcomeTransportError
	}
	req.Header.Set("Content-Type", wire.ContentTypeJSON)
	req.Header.Set("Accept", wire.ContentTypeJSON+", "+wire.ContentTypeSSE)
	if tok, ok := f.session.Token(); ok {
		req.Header.Set(headerSessionID, tok)
	}
	if f.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+f.authToken)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		logx.Log.Warn().Err(err).Msg("upstream request failed")
		return wire.ErrorResponse(id, wire.CodeTransportError, err.Error()), metrics.OutcomeTransportError
	}
	defer func() { _ = resp.Body.Close() }()
	f.session.Observe(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logx.Log.Warn().Err(err).Msg("upstream body read failed")
		return wire.ErrorResponse(id, wire.CodeTransportError, err.Error()), metrics.OutcomeTransportError
	}
	if resp.StatusCode != http.StatusOK {
		msg := "upstream status " + resp.Status
		if b := strings.TrimSpace(string(body)); b != "" {
			msg += ": " + b
		}
		logx.Log.Warn().Int("status", resp.StatusCode).Msg("upstream returned non-200")
		return wire.ErrorResponse(id, wire.CodeTransportError, msg), metrics.OutcomeTransportError
	}

	payload, err := wire.Decode(resp.Header.Get("Content-Type"), body, id)
	if err != nil {
		logx.Log.Warn().Err(err).Msg("upstream response undecodable")
		return wire.ErrorResponse(id, wire.CodeProtocolError, "protocol error: "+err.Error()), metrics.OutcomeProtocolError
	}
	var env wire.Response
	if err := json.Unmarshal(payload, &env); err != nil ||
		(env.Result == nil && env.Error == nil) ||
		!wire.IDsEqual(env.ID, id) {
		logx.Log.Warn().RawJSON("id", jsonID(id)).Msg("upstream response malformed")
		return wire.ErrorResponse(id, wire.CodeProtocolError, "protocol error: malformed response"), metrics.OutcomeProtocolError
	}
	return payload, metrics.OutcomeOK
}

// jsonID makes a raw id safe for logging; a missing id logs as null.
func jsonID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}
