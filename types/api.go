package types

// AddFilesRequest is the request body for POST /api/self/v1/add-files
type AddFilesRequest struct {
	Paths []string `json:"paths"`
}

// AddFilesResponse is the per-path result list for add-files
type AddFilesResponse struct {
	Results []AddFileResult `json:"results"`
}

// StatusResponse is returned by GET /api/self/v1/status
type StatusResponse struct {
	State       ShareState     `json:"state"`
	Address     string         `json:"address,omitempty"`
	Slug        string         `json:"slug"`
	Alias       string         `json:"alias"`
	Fingerprint string         `json:"fingerprint"`
	Exposures   []Exposure     `json:"exposures"`
	LastEvents  []SessionEvent `json:"lastEvents,omitempty"`
}
