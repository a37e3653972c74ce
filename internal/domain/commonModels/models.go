package commonModels

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// UploadedFileRecord is a file the backend confirmed as ingested.
type UploadedFileRecord struct {
	Name string `json:"name"`
}

// SourceRef is a citation returned with an answer. The client never checks it.
type SourceRef struct {
	Filename string `json:"filename"`
	Page     int    `json:"page"`
}

// FileHandle is a user selected file: its display name and a way to read the raw bytes.
type FileHandle struct {
	Name string
	Open func() (io.ReadCloser, error)
}

func FileFromPath(path string) FileHandle {
	return FileHandle{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

func FileFromBytes(name string, data []byte) FileHandle {
	return FileHandle{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func FileNames(files []FileHandle) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}
