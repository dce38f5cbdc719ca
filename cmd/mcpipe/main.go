package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gaspardpetit/mcpipe/internal/bridge"
	"github.com/gaspardpetit/mcpipe/internal/check"
	"github.com/gaspardpetit/mcpipe/internal/config"
	"github.com/gaspardpetit/mcpipe/internal/logx"
	"github.com/gaspardpetit/mcpipe/internal/metrics"
)

var (
	version   = "dev"
	buildSHA  = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	runCheck := flag.Bool("check", false, "verify endpoint connectivity and exit")
	var cfg config.Config
	cfg.BindFlags()
	flag.Parse()
	if *showVersion {
		fmt.Printf("mcpipe version=%s sha=%s date=%s\n", version, buildSHA, buildDate)
		return
	}
	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			logx.Log.Fatal().Err(err).Str("path", cfg.ConfigFile).Msg("load config")
		}
	}
	logx.Configure(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logx.Log.Fatal().Err(err).Msg("invalid configuration")
	}
	metrics.SetBuildInfo(version, buildSHA, buildDate)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *runCheck {
		res, err := check.Run(ctx, cfg.EndpointURL, cfg.RequestTimeout)
		if err != nil {
			logx.Log.Fatal().Err(err).Str("endpoint", cfg.EndpointURL).Msg("endpoint check failed")
		}
		fmt.Printf("endpoint ok: server=%s version=%s protocol=%s tools=%d\n",
			res.ServerName, res.ServerVersion, res.ProtocolVersion, res.ToolCount)
		return
	}

	if err := bridge.Run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		logx.Log.Fatal().Err(err).Msg("bridge stopped")
	}
}
