package fileserver

import (
	"fmt"
	"net"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/l-n-s/QuickShare/tool"
)

// Server serves the ephemeral web root over plain HTTP on a loopback port.
// It is reachable from outside only through the tunnel, which forwards to
// this port. Request logging is disabled by design: no record of who
// downloaded what, so the engine carries Recovery only, never gin's logger.
type Server struct {
	webRoot string
	slug    string
	port    int
	limiter *rate.Limiter
	files   http.Handler
}

func New(webRoot, slug string, port, ratePerSec, burst int) *Server {
	if ratePerSec <= 0 {
		ratePerSec = 64
	}
	if burst <= 0 {
		burst = 2 * ratePerSec
	}
	return &Server{
		webRoot: webRoot,
		slug:    slug,
		port:    port,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		files:   http.FileServer(http.Dir(webRoot)),
	}
}

// Handler builds the request handler. Split from Serve so tests can drive
// it without binding a socket.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.NoRoute(s.serveFiles)
	return engine
}

// Serve binds 127.0.0.1 and serves until the process is killed. The parent
// terminates this process forcibly; there is no graceful drain.
func (s *Server) Serve() error {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", s.port))
	if err != nil {
		return fmt.Errorf("%w: %v", tool.ErrPortUnavailable, err)
	}
	srv := &http.Server{Handler: s.Handler()}
	return srv.Serve(ln)
}

// serveFiles guards the slug secrecy rules, then hands off to the standard
// file handler (which already gives 404s, HEAD support and sub-directory
// indexes). The web root and the slug directory itself must never be
// listed: enumerating either would defeat the unguessable path.
func (s *Server) serveFiles(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.String(http.StatusMethodNotAllowed, "405 method not allowed")
		return
	}
	if !s.limiter.Allow() {
		c.String(http.StatusTooManyRequests, "429 too many requests")
		return
	}

	p := path.Clean("/" + c.Request.URL.Path)
	if p == "/" || p == "/"+s.slug {
		c.String(http.StatusForbidden, "403 Forbidden")
		return
	}
	if !strings.HasPrefix(p, "/"+s.slug+"/") {
		c.String(http.StatusNotFound, "404 not found")
		return
	}

	s.files.ServeHTTP(c.Writer, c.Request)
}
