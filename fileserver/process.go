package fileserver

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/l-n-s/QuickShare/tool"
)

// Process is the parent-side handle on the isolated file-serving process.
// The server runs out-of-process so request handling cannot destabilize the
// controller; a crash there is just a dead child.
type Process struct {
	cmd  *exec.Cmd
	port int
	done chan struct{}
}

// StartProcess re-executes the current binary in serve mode, bound to the
// given loopback port.
func StartProcess(webRoot, slug string, port, ratePerSec, burst int) (*Process, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("cannot locate own binary: %w", err)
	}
	cmd := exec.Command(exe,
		"-serveWebRoot", webRoot,
		"-serveSlug", slug,
		"-servePort", strconv.Itoa(port),
		"-serveRate", strconv.Itoa(ratePerSec),
		"-serveBurst", strconv.Itoa(burst),
	)
	// startup diagnostics only; the child never logs requests
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("cannot start file server: %w", err)
	}

	p := &Process{cmd: cmd, port: port, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(p.done)
	}()
	tool.DefaultLogger.Infof("file server running on 127.0.0.1:%d (pid %d)", port, cmd.Process.Pid)
	return p, nil
}

// Port returns the loopback port the child was told to bind.
func (p *Process) Port() int {
	return p.port
}

// Running reports whether the child is still alive.
func (p *Process) Running() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Stop kills the child immediately. In-flight requests are cut off; the
// server holds no state worth draining for.
func (p *Process) Stop() {
	if !p.Running() {
		return
	}
	if err := p.cmd.Process.Kill(); err != nil {
		tool.DefaultLogger.Warnf("cannot kill file server (pid %d): %v", p.cmd.Process.Pid, err)
		return
	}
	<-p.done
}
