package coordinator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"

	"github.com/l-n-s/QuickShare/exposure"
	"github.com/l-n-s/QuickShare/fileserver"
	"github.com/l-n-s/QuickShare/tool"
	"github.com/l-n-s/QuickShare/tunnel"
	"github.com/l-n-s/QuickShare/types"
)

const lastEventTTL = 3600 * time.Second // 1 hour

// ErrBusy rejects a start/stop while the previous one is still resolving.
// Single-flight: new requests are accepted only from idle or active.
var ErrBusy = errors.New("a start or stop is already in flight")

// Notifier receives the presentation-layer events. The notify hub implements
// it; tests substitute a recorder.
type Notifier interface {
	Broadcast(ev types.SessionEvent)
}

// ServerProcess is the parent-side view of the file-serving child.
type ServerProcess interface {
	Port() int
	Running() bool
	Stop()
}

// StartServerFunc spawns the file server. Swappable so coordinator tests do
// not have to re-execute the test binary.
type StartServerFunc func(webRoot, slug string, port, ratePerSec, burst int) (ServerProcess, error)

func defaultStartServer(webRoot, slug string, port, ratePerSec, burst int) (ServerProcess, error) {
	return fileserver.StartProcess(webRoot, slug, port, ratePerSec, burst)
}

// NewShareSession creates the per-run share identity: the ephemeral web root
// with its slug-named shared directory. One per process; Shutdown deletes
// the scratch directory at exit.
func NewShareSession(alias, fingerprint string) (*types.ShareSession, error) {
	slug := tool.GenerateSlug()
	webRoot, err := os.MkdirTemp("", "quickshare-")
	if err != nil {
		return nil, fmt.Errorf("cannot create scratch directory: %w", err)
	}
	sharedDir := filepath.Join(webRoot, slug)
	if err := os.Mkdir(sharedDir, 0o700); err != nil {
		_ = os.RemoveAll(webRoot)
		return nil, fmt.Errorf("cannot create shared directory: %w", err)
	}
	return &types.ShareSession{
		Slug:        slug,
		WebRoot:     webRoot,
		SharedDir:   sharedDir,
		Alias:       alias,
		Fingerprint: fingerprint,
	}, nil
}

// Coordinator sequences the exposure store, the file-serving process and the
// tunnel session, and republishes their outcomes to the presentation layer.
// All its methods are called from the control thread; tunnel completions
// arrive on a dedicated goroutine that only touches state under the lock.
type Coordinator struct {
	session *types.ShareSession
	store   *exposure.Store
	tun     *tunnel.Session
	hub     Notifier

	startServer StartServerFunc
	serverRate  int
	serverBurst int

	mu      sync.Mutex
	srv     ServerProcess
	address string // public base address, set while the tunnel is active

	lastEvents *ttlworker.Cache[string, types.SessionEvent]
	done       chan struct{}
}

// Options for New. Zero values pick production defaults.
type Options struct {
	StartServer StartServerFunc
	ServerRate  int
	ServerBurst int
}

// New wires the coordinator and starts consuming tunnel completions.
func New(session *types.ShareSession, tun *tunnel.Session, hub Notifier, opts Options) *Coordinator {
	if opts.StartServer == nil {
		opts.StartServer = defaultStartServer
	}
	c := &Coordinator{
		session:     session,
		store:       exposure.NewStore(session.SharedDir),
		tun:         tun,
		hub:         hub,
		startServer: opts.StartServer,
		serverRate:  opts.ServerRate,
		serverBurst: opts.ServerBurst,
		lastEvents:  ttlworker.NewCache[string, types.SessionEvent](lastEventTTL),
		done:        make(chan struct{}),
	}
	go c.consumeTunnelEvents()
	return c
}

// Store exposes the underlying exposure store (read-only use).
func (c *Coordinator) Store() *exposure.Store {
	return c.store
}

// StartSharing starts the file server if needed and requests a tunnel open
// bound to its port. Completion arrives later as TunnelReady or
// TunnelFailed; callers should treat the session as busy until then.
func (c *Coordinator) StartSharing() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.tun.State() {
	case types.StateActive:
		return nil // already sharing
	case types.StateIdle:
	default:
		return ErrBusy
	}

	if c.srv == nil || !c.srv.Running() {
		port, err := tool.PickFreePort()
		if err != nil {
			return err
		}
		srv, err := c.startServer(c.session.WebRoot, c.session.Slug, port, c.serverRate, c.serverBurst)
		if err != nil {
			return fmt.Errorf("cannot start file server: %w", err)
		}
		c.srv = srv
	}

	c.tun.Open(c.srv.Port())
	return nil
}

// StopSharing clears every exposure, then requests tunnel teardown. The
// order matters: once the tunnel address may still be cached somewhere, no
// file must remain link-reachable. The file server keeps running across
// cycles; on loopback it is unreachable without a tunnel anyway.
func (c *Coordinator) StopSharing() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.tun.State() {
	case types.StateIdle:
		return nil // nothing to stop
	case types.StateActive:
	default:
		return ErrBusy
	}

	err := c.store.ClearAll()
	if err != nil {
		tool.DefaultLogger.Errorf("clearing exposures: %v", err)
	}
	c.tun.Close()
	return err
}

// AddFiles exposes each path and reports per-path outcomes. A NameConflict
// (or any other per-file failure) does not abort the rest of the batch.
func (c *Coordinator) AddFiles(paths []string) []types.AddFileResult {
	c.mu.Lock()
	base := c.address
	c.mu.Unlock()

	results := make([]types.AddFileResult, 0, len(paths))
	var urls []string
	for _, p := range paths {
		entry, err := c.store.Expose(p)
		if err != nil {
			results = append(results, types.AddFileResult{Path: p, Error: err.Error()})
			c.publish(types.SessionEvent{Kind: types.EventExposureFailed, Reason: err.Error()})
			continue
		}
		url := tool.BuildPublicURL(base, c.session.Slug, entry.URL)
		results = append(results, types.AddFileResult{Path: p, URL: url})
		urls = append(urls, url)
	}
	if len(urls) > 0 {
		c.publish(types.SessionEvent{Kind: types.EventExposureAdded, URLs: urls})
	}
	return results
}

// Status snapshots the session for the presentation layer.
func (c *Coordinator) Status() types.StatusResponse {
	c.mu.Lock()
	base := c.address
	c.mu.Unlock()

	entries := c.store.Entries()
	exposures := make([]types.Exposure, len(entries))
	for i, e := range entries {
		e.URL = tool.BuildPublicURL(base, c.session.Slug, e.URL)
		exposures[i] = e
	}
	return types.StatusResponse{
		State:       c.tun.State(),
		Address:     base,
		Slug:        c.session.Slug,
		Alias:       c.session.Alias,
		Fingerprint: c.session.Fingerprint,
		Exposures:   exposures,
		LastEvents:  c.recentEvents(),
	}
}

// Address returns the public base address, empty unless the tunnel is up.
func (c *Coordinator) Address() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.address
}

// Shutdown tears everything down at process exit, in dependency order: kill
// the file server so nothing is served, best-effort close the tunnel, then
// delete the scratch directory (deleting first would mean serving from a
// directory mid-deletion).
func (c *Coordinator) Shutdown(ctx context.Context) {
	c.mu.Lock()
	if c.srv != nil {
		c.srv.Stop()
		c.srv = nil
	}
	c.mu.Unlock()

	if err := c.tun.Shutdown(ctx); err != nil {
		tool.DefaultLogger.Warnf("tunnel shutdown: %v", err)
	}
	<-c.done

	if err := os.RemoveAll(c.session.WebRoot); err != nil {
		tool.DefaultLogger.Warnf("removing scratch directory: %v", err)
	}
}

func (c *Coordinator) consumeTunnelEvents() {
	defer close(c.done)
	for ev := range c.tun.Events() {
		switch ev.Kind {
		case tunnel.EventReady:
			c.mu.Lock()
			c.address = ev.Address
			c.mu.Unlock()
			tool.DefaultLogger.Infof("tunnel ready")
			c.publish(types.SessionEvent{Kind: types.EventTunnelReady, Address: ev.Address})
		case tunnel.EventFailed:
			tool.DefaultLogger.Errorf("tunnel open failed: %v", ev.Err)
			c.publish(types.SessionEvent{Kind: types.EventTunnelFailed, Reason: ev.Err.Error()})
		case tunnel.EventStopped:
			c.mu.Lock()
			c.address = ""
			c.mu.Unlock()
			tool.DefaultLogger.Infof("tunnel stopped")
			c.publish(types.SessionEvent{Kind: types.EventTunnelStopped})
		}
	}
}

func (c *Coordinator) publish(ev types.SessionEvent) {
	c.lastEvents.Set(string(ev.Kind), ev)
	if c.hub != nil {
		c.hub.Broadcast(ev)
	}
}

// recentEvents collects the freshest event per kind, so a GUI that attaches
// late (or reconnects) can catch up from the status endpoint.
func (c *Coordinator) recentEvents() []types.SessionEvent {
	kinds := []types.EventKind{
		types.EventTunnelReady,
		types.EventTunnelFailed,
		types.EventTunnelStopped,
		types.EventExposureAdded,
		types.EventExposureFailed,
	}
	var out []types.SessionEvent
	for _, k := range kinds {
		if ev := c.lastEvents.Get(string(k)); ev.Kind != "" {
			out = append(out, ev)
		}
	}
	return out
}
