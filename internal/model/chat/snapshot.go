package chat

// Profile is the display-only auth record mirrored alongside sessions.
// Nothing in the engine reads it; it is persisted for the UI layer.
type Profile struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Snapshot is the full serialized client state pushed to the persistent
// store on every mutation and read back once at startup.
type Snapshot struct {
	Sessions []Session `json:"sessions"`
	ActiveID string    `json:"activeId"`
	Theme    string    `json:"theme,omitempty"`
	Profile  *Profile  `json:"profile,omitempty"`
}
