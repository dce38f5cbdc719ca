package wire

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"strings"
)

// Content types understood by the decoder.
const (
	ContentTypeJSON = "application/json"
	ContentTypeSSE  = "text/event-stream"
)

// ErrNoMatchingEvent is returned when an event stream ends without any event
// whose id matches the pending request.
var ErrNoMatchingEvent = errors.New("event stream contains no matching event")

// maxLineBytes bounds a single SSE line; oversized lines fail the scan
// instead of growing without limit.
const maxLineBytes = 8 << 20

// Decode extracts a single JSON-RPC payload from an upstream response body.
// A plain JSON body is parsed whole; an event-stream body is scanned event by
// event and the first payload whose id matches the pending request id wins.
// Earlier events without a matching id, such as progress notifications, are
// discarded. The returned payload is compacted to a single line.
func Decode(contentType string, body []byte, id json.RawMessage) (json.RawMessage, error) {
	mediaType := contentType
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = mt
	}
	if strings.EqualFold(mediaType, ContentTypeSSE) {
		return decodeEventStream(body, id)
	}
	return compact(bytes.TrimSpace(body))
}

// decodeEventStream walks the SSE framing: data: lines accumulate into the
// current event (prefix and one following space stripped, multi-line data
// joined by newline), a blank line closes the event. Unterminated trailing
// data at end of body closes the final event.
func decodeEventStream(body []byte, id json.RawMessage) (json.RawMessage, error) {
	var data []string
	finish := func() (json.RawMessage, bool, error) {
		if len(data) == 0 {
			return nil, false, nil
		}
		payload := strings.Join(data, "\n")
		data = nil
		var env struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal([]byte(payload), &env); err != nil {
			return nil, false, fmt.Errorf("malformed event payload: %w", err)
		}
		if !IDsEqual(env.ID, id) {
			return nil, false, nil
		}
		out, err := compact([]byte(payload))
		return out, true, err
	}

	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			out, ok, err := finish()
			if err != nil {
				return nil, err
			}
			if ok {
				return out, nil
			}
			continue
		}
		if v, ok := strings.CutPrefix(line, "data:"); ok {
			data = append(data, strings.TrimPrefix(v, " "))
		}
		// other SSE fields (event:, id:, retry:, comments) are ignored
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	out, ok, err := finish()
	if err != nil {
		return nil, err
	}
	if ok {
		return out, nil
	}
	return nil, ErrNoMatchingEvent
}

func compact(payload []byte) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, payload); err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}
	return buf.Bytes(), nil
}
