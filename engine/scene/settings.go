package scene

// SyncSettings is the per-scene weight sync state: which file the weights live in
// and whether syncing is on.
type SyncSettings struct {
	WeightFile string `toml:"weight_file"`
	IsActive   bool   `toml:"is_active"`
}

// Activate points the settings at path and turns syncing on.
func (s *SyncSettings) Activate(path string) {
	s.WeightFile = path
	s.IsActive = true
}

// Clear turns syncing off and forgets the file.
func (s *SyncSettings) Clear() {
	s.WeightFile = ""
	s.IsActive = false
}

// Syncing reports whether a resync has a file to read from.
func (s SyncSettings) Syncing() bool {
	return s.IsActive && s.WeightFile != ""
}
