package bridge

import (
	"context"
	"io"
	"time"

	"github.com/gaspardpetit/mcpipe/internal/config"
	"github.com/gaspardpetit/mcpipe/internal/logx"
	"github.com/gaspardpetit/mcpipe/internal/status"
)

// Run wires a session, forwarder and loop together and blocks until the
// input stream closes or the context is canceled. When a metrics address is
// configured it also serves the status listener for the duration of the run.
func Run(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := &Session{}
	fwd := NewForwarder(cfg.EndpointURL, cfg.AuthToken, cfg.RequestTimeout, session)
	loop := NewLoop(in, out, fwd)

	if cfg.MetricsAddr != "" {
		start := time.Now()
		h := status.Handler(func() status.Snapshot {
			requests, errors := loop.Counts()
			return status.Snapshot{
				ClientName:         cfg.ClientName,
				EndpointURL:        cfg.EndpointURL,
				SessionEstablished: session.Established(),
				Requests:           requests,
				Errors:             errors,
				UptimeSeconds:      uint64(time.Since(start).Seconds()),
			}
		}, cfg.AllowedOrigins)
		addr, err := status.Serve(ctx, cfg.MetricsAddr, h)
		if err != nil {
			return err
		}
		logx.Log.Info().Str("addr", addr).Msg("status server started")
	}

	logx.Log.Info().Str("endpoint", cfg.EndpointURL).Str("client_name", cfg.ClientName).Msg("bridge ready")
	return loop.Run(ctx)
}
