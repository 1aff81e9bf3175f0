package tool

import (
	"flag"

	"github.com/l-n-s/QuickShare/types"
)

// SetFlags parses CLI flags and returns the override config.
func SetFlags() types.Config {
	var cfg types.Config
	flag.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	flag.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	flag.StringVar(&cfg.UseRouterAddress, "useRouterAddress", "", "override anonymity router control address (host:port)")
	flag.IntVar(&cfg.UseControlPort, "useControlPort", 0, "override localhost control API port")
	flag.StringVar(&cfg.UseAlias, "useAlias", "", "specify alias for this session")
	// serve mode flags, used when the binary re-executes itself as the
	// isolated file-serving process. Not intended for direct use.
	flag.StringVar(&cfg.ServeWebRoot, "serveWebRoot", "", "serve mode: web root directory")
	flag.StringVar(&cfg.ServeSlug, "serveSlug", "", "serve mode: shared directory slug")
	flag.IntVar(&cfg.ServePort, "servePort", 0, "serve mode: loopback port to bind")
	flag.IntVar(&cfg.ServeRate, "serveRate", 0, "serve mode: requests per second limit")
	flag.IntVar(&cfg.ServeBurst, "serveBurst", 0, "serve mode: rate limiter burst")
	flag.Parse()
	return cfg
}
