package entity

import "time"

type ResolveSource string

const (
	ResolveSourceDirect ResolveSource = "direct"
	ResolveSourceHTML   ResolveSource = "html"
	ResolveSourceIndex  ResolveSource = "index"
)

// ResolvedFile points at a regular file inside the static root.
type ResolvedFile struct {
	Path    string        `json:"path"`
	Source  ResolveSource `json:"source"`
	Size    int64         `json:"size"`
	ModTime time.Time     `json:"mod_time"`
}
