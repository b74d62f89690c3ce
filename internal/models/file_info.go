package models

// FileHandle is an opaque reference to a file the user selected.
// Only the name and size are known; the content is never read.
type FileHandle struct {
	ID   string `json:"id" msgpack:"id"`
	Name string `json:"name" msgpack:"name"`
	Size int64  `json:"size" msgpack:"size"`
}
