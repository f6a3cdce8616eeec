// Command chordnode boots one node of the distributed file store: it loads
// configuration, wires a logger, ring service, and file service together,
// joins (or forms) a ring over the configured transport, and serves until
// a shutdown signal arrives.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chordfs/chordfs/internal/boundary/grpctransport"
	"github.com/chordfs/chordfs/internal/boundary/httpclient"
	"github.com/chordfs/chordfs/internal/boundary/httpserver"
	"github.com/chordfs/chordfs/internal/config"
	"github.com/chordfs/chordfs/internal/fileservice"
	"github.com/chordfs/chordfs/internal/logger"
	zapfactory "github.com/chordfs/chordfs/internal/logger/zap"
	"github.com/chordfs/chordfs/internal/ring"
	"github.com/chordfs/chordfs/internal/storage/localfs"
)

var defaultConfigPath = "config/chordnode.yaml"

// peerServer is the subset of a boundary transport's server half every
// transport kind below implements, so main doesn't need a type switch past
// construction time.
type peerServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %q: %v", *configPath, err)
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	var lgr logger.Logger
	if cfg.Logger.Active {
		zapLog, err := zapfactory.New(zapfactory.Config{
			Level:    cfg.Logger.Level,
			Encoding: cfg.Logger.Encoding,
			Mode:     cfg.Logger.Mode,
			File: zapfactory.FileConfig{
				Path:       cfg.Logger.File.Path,
				MaxSize:    cfg.Logger.File.MaxSize,
				MaxBackups: cfg.Logger.File.MaxBackups,
				MaxAge:     cfg.Logger.File.MaxAge,
				Compress:   cfg.Logger.File.Compress,
			},
		})
		if err != nil {
			log.Fatalf("failed to initialize logger: %v", err)
		}
		defer func() { _ = zapLog.Sync() }()
		lgr = zapfactory.NewAdapter(zapLog)
	} else {
		lgr = logger.Nop{}
	}
	cfg.LogConfig(lgr)

	store := localfs.New(cfg.Storage.Path, lgr.Named("storage"))
	if err := store.Initialize(context.Background()); err != nil {
		lgr.Error("failed to initialize storage", logger.F("err", err))
		os.Exit(1)
	}

	var ringTransport ring.Transport
	var fileTransport fileservice.Transport
	switch cfg.Transport.Kind {
	case "grpc":
		c := grpctransport.New()
		ringTransport, fileTransport = c, c
	default:
		c := httpclient.New(cfg.DHT.RPCTimeout)
		ringTransport, fileTransport = c, c
	}

	ringCfg := ring.Config{
		Host:              cfg.Node.Host,
		Port:              cfg.Node.Port,
		ID:                cfg.Node.ID,
		MBits:             cfg.DHT.MBits,
		StabilizeInterval: cfg.DHT.StabilizeInterval,
		JoinRetryInterval: cfg.DHT.JoinRetryInterval,
		RPCTimeout:        cfg.DHT.RPCTimeout,
		PredecessorCheck:  cfg.DHT.PredecessorCheck,
		MaxLookupHops:     cfg.DHT.MaxLookupHops,
	}
	ringSvc := ring.New(ringCfg, ringTransport, lgr.Named("ring"))
	fileSvc := fileservice.New(ringSvc, fileTransport, store, cfg.DHT.MBits, lgr.Named("fileservice"))

	addr := ringSvc.Self().Address()
	var srv peerServer
	switch cfg.Transport.Kind {
	case "grpc":
		srv = grpctransport.New(addr, ringSvc, fileSvc, lgr.Named("grpctransport"))
	default:
		srv = httpserver.New(addr, ringSvc, fileSvc, lgr.Named("httpserver"))
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Start() }()
	lgr.Info("boundary server started", logger.F("kind", cfg.Transport.Kind), logger.F("addr", addr))

	joinCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	var bootstrap *ring.Identity
	if cfg.HasBootstrap() {
		bootstrap = &ring.Identity{Host: cfg.Bootstrap.Host, Port: cfg.Bootstrap.Port}
	}
	if err := ringSvc.Start(joinCtx, bootstrap); err != nil {
		lgr.Error("failed to start ring", logger.F("err", err))
		_ = srv.Shutdown(context.Background())
		os.Exit(1)
	}
	lgr.Info("ring online", logger.F("self", ringSvc.Self().String()), logger.F("alone", ringSvc.Alone()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		lgr.Info("shutdown signal received, stopping gracefully")
		ringSvc.Shutdown()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lgr.Warn("boundary server shutdown did not complete cleanly", logger.F("err", err))
		}
	case err := <-serveErr:
		lgr.Error("boundary server terminated unexpectedly", logger.F("err", err))
		ringSvc.Shutdown()
		os.Exit(1)
	}
}
