package types

// ShareState is the lifecycle state of the tunnel side of a share session.
// The only legal cycle is Idle -> Starting -> Active -> Stopping -> Idle;
// a failed start short-circuits Starting -> Idle.
type ShareState string

const (
	StateIdle     ShareState = "idle"
	StateStarting ShareState = "starting"
	StateActive   ShareState = "active"
	StateStopping ShareState = "stopping"
)

// ShareSession holds the per-run identity of the share: the unguessable slug,
// the ephemeral scratch directory and the directory actually served. Exactly
// one ShareSession exists per process; it is created at startup and its
// WebRoot is deleted on exit. The tunnel and file server cycle within it.
type ShareSession struct {
	Slug        string
	WebRoot     string // ephemeral scratch directory, exclusively owned
	SharedDir   string // WebRoot/Slug, the only directory ever served
	Alias       string
	Fingerprint string
}

// Exposure describes one entry of the virtual shared directory.
type Exposure struct {
	ID         string `json:"id"`
	PublicName string `json:"publicName"`
	SourcePath string `json:"sourcePath"`
	URL        string `json:"url"`
}

// AddFileResult reports the outcome of exposing a single path. Exactly one of
// URL or Error is set.
type AddFileResult struct {
	Path  string `json:"path"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}
