package embedded

import (
	"embed"
	"io/fs"
)

//go:embed config.yaml
var EmbeddedFiles embed.FS

// GetFileContent returns the content of an embedded file.
func GetFileContent(path string) ([]byte, error) {
	return EmbeddedFiles.ReadFile(path)
}

// GetFS exposes the embedded file system.
func GetFS() fs.FS {
	return EmbeddedFiles
}
