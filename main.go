package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/l-n-s/QuickShare/api"
	"github.com/l-n-s/QuickShare/api/notifyhub"
	"github.com/l-n-s/QuickShare/coordinator"
	"github.com/l-n-s/QuickShare/fileserver"
	"github.com/l-n-s/QuickShare/tool"
	"github.com/l-n-s/QuickShare/tunnel"
)

func main() {
	cfg := tool.SetFlags()

	// serve mode: this process is the isolated file server, spawned by a
	// parent QuickShare. Nothing else runs here.
	if cfg.ServeWebRoot != "" {
		srv := fileserver.New(cfg.ServeWebRoot, cfg.ServeSlug, cfg.ServePort, cfg.ServeRate, cfg.ServeBurst)
		if err := srv.Serve(); err != nil {
			tool.DefaultLogger.Fatalf("file server: %v", err)
		}
		return
	}

	appCfg, err := tool.LoadConfig(cfg.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	if cfg.UseRouterAddress != "" {
		appCfg.RouterAddress = cfg.UseRouterAddress
	}
	if cfg.UseControlPort > 0 {
		appCfg.ControlPort = cfg.UseControlPort
	}
	if cfg.UseAlias != "" {
		appCfg.Alias = cfg.UseAlias
	}

	// initialize logger
	tool.InitLogger()
	if cfg.Log == "" {
		tool.DefaultLogger.SetLevel(log.DebugLevel)
	} else {
		switch strings.ToLower(cfg.Log) {
		case "dev":
			tool.DefaultLogger.SetLevel(log.DebugLevel)
		case "prod":
			tool.DefaultLogger.SetLevel(log.InfoLevel)
		case "none":
			tool.DefaultLogger.SetLevel(log.FatalLevel)
		default:
			tool.DefaultLogger.Warnf("Unknown log mode %q, using debug level", cfg.Log)
			tool.DefaultLogger.SetLevel(log.DebugLevel)
		}
	}

	session, err := coordinator.NewShareSession(appCfg.Alias, appCfg.Fingerprint)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}

	tun := tunnel.NewSession(appCfg.RouterAddress, tunnel.Options{
		TunnelLength: appCfg.TunnelLength,
		OpenTimeout:  time.Duration(appCfg.OpenTimeout) * time.Second,
	})
	hub := notifyhub.New()
	coord := coordinator.New(session, tun, hub, coordinator.Options{
		ServerRate:  appCfg.ServerRate,
		ServerBurst: appCfg.ServerBurst,
	})

	apiServer := api.NewServer(appCfg.ControlPort, coord, hub)
	go func() {
		if err := apiServer.Start(); err != nil {
			tool.DefaultLogger.Fatalf("control API startup failed: %v", err)
		}
	}()

	tool.DefaultLogger.Infof("QuickShare up as %q, router at %s", appCfg.Alias, appCfg.RouterAddress)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	// teardown order matters: stop serving, close the tunnel, then delete
	// the scratch directory. Coordinator.Shutdown holds that order.
	tool.DefaultLogger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	coord.Shutdown(ctx)
}
