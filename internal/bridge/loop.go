package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/gaspardpetit/mcpipe/internal/logx"
	"github.com/gaspardpetit/mcpipe/internal/metrics"
	"github.com/gaspardpetit/mcpipe/internal/wire"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 8 << 20

// Loop reads one JSON-RPC message per line from the input stream and writes
// exactly one JSON-RPC message per line to the output stream. Processing is
// strictly sequential: the next line is only read after the previous
// request's response has been written and flushed.
type Loop struct {
	in  io.Reader
	out io.Writer
	fwd *Forwarder

	requests atomic.Uint64
	errors   atomic.Uint64
}

// NewLoop constructs a Loop bridging in to out through fwd.
func NewLoop(in io.Reader, out io.Writer, fwd *Forwarder) *Loop {
	return &Loop{in: in, out: out, fwd: fwd}
}

// Counts returns the number of processed requests and of error responses.
func (l *Loop) Counts() (requests, errors uint64) {
	return l.requests.Load(), l.errors.Load()
}

// Run processes input lines until EOF or context cancellation. Both are
// clean shutdowns and return nil; the in-flight request, if any, completes
// before Run returns. A single bad line, however large, never aborts the
// loop: it gets an error response line and processing moves on.
func (l *Loop) Run(ctx context.Context) error {
	in := bufio.NewReaderSize(l.in, 64*1024)
	for {
		if ctx.Err() != nil {
			logx.Log.Info().Msg("shutdown requested")
			return nil
		}
		line, err := readLine(in)
		if err == errLineTooLong {
			logx.Log.Warn().Msg("oversized input line dropped")
			metrics.RecordRequest(metrics.OutcomeParseError)
			l.requests.Add(1)
			l.errors.Add(1)
			if werr := l.writeLine(wire.ErrorResponse(nil, wire.CodeParseError, "parse error")); werr != nil {
				return werr
			}
			continue
		}
		if err != nil && err != io.EOF {
			return fmt.Errorf("read input: %w", err)
		}
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			if herr := l.handleLine(ctx, trimmed); herr != nil {
				return herr
			}
		}
		if err == io.EOF {
			logx.Log.Info().Msg("input stream closed")
			return nil
		}
	}
}

var errLineTooLong = fmt.Errorf("input line exceeds %d bytes", maxLineBytes)

// readLine reads up to and including the next newline. A line longer than
// maxLineBytes is drained from the reader and reported as errLineTooLong;
// reading resumes at the start of the following line.
func readLine(r *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		frag, err := r.ReadSlice('\n')
		if len(line)+len(frag) > maxLineBytes {
			for err == bufio.ErrBufferFull {
				_, err = r.ReadSlice('\n')
			}
			return nil, errLineTooLong
		}
		line = append(line, frag...)
		switch err {
		case nil:
			return line, nil
		case bufio.ErrBufferFull:
			continue
		default:
			return line, err
		}
	}
}

func (l *Loop) handleLine(ctx context.Context, line []byte) error {
	l.requests.Add(1)
	start := time.Now()
	req, err := wire.ParseRequest(line)
	var out []byte
	if err != nil {
		logx.Log.Debug().Err(err).Msg("unparsable input line")
		metrics.RecordRequest(metrics.OutcomeParseError)
		l.errors.Add(1)
		out = wire.ErrorResponse(nil, wire.CodeParseError, "parse error")
	} else {
		out = l.fwd.Forward(ctx, req.ID, line)
		if isErrorLine(out) {
			l.errors.Add(1)
		}
		logx.Log.Debug().
			Str("method", req.Method).
			RawJSON("id", jsonID(req.ID)).
			Dur("elapsed", time.Since(start)).
			Msg("request bridged")
	}
	return l.writeLine(out)
}

// writeLine emits one response line. The single Write call doubles as the
// flush: the output stream is unbuffered on our side.
func (l *Loop) writeLine(payload []byte) error {
	buf := make([]byte, 0, len(payload)+1)
	buf = append(buf, payload...)
	buf = append(buf, '\n')
	if _, err := l.out.Write(buf); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func isErrorLine(payload []byte) bool {
	var env wire.Response
	if err := json.Unmarshal(payload, &env); err != nil {
		return false
	}
	return env.Error != nil
}
