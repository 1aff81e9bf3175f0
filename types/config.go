package types

// AppConfig represents the application configuration loaded from config file
type AppConfig struct {
	Alias         string `yaml:"alias"`
	Version       string `yaml:"version"`
	Fingerprint   string `yaml:"fingerprint"`
	RouterAddress string `yaml:"routerAddress"` // anonymity router control endpoint, host:port
	ControlPort   int    `yaml:"controlPort"`   // localhost control API port
	TunnelLength  int    `yaml:"tunnelLength"`  // hops per tunnel direction
	OpenTimeout   int    `yaml:"openTimeout"`   // tunnel open/close timeout in seconds
	ServerRate    int    `yaml:"serverRate"`    // file server requests per second
	ServerBurst   int    `yaml:"serverBurst"`   // file server rate limiter burst
}

// Config holds runtime overrides from CLI flags
type Config struct {
	Log              string
	UseConfigPath    string
	UseRouterAddress string
	UseControlPort   int
	UseAlias         string

	// Serve mode: set only when the binary is re-executed as the isolated
	// file-serving child process.
	ServeWebRoot string
	ServeSlug    string
	ServePort    int
	ServeRate    int
	ServeBurst   int
}
