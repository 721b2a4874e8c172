package session

import (
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps the session identifier in a plain file, the closest
// equivalent to the browser's localStorage for a headless client.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath resolves the conventional location under the user config
// directory. Falls back to the working directory when none is available.
func DefaultFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return StorageKey
	}
	return filepath.Join(dir, "salon-chat", StorageKey)
}

func (s *FileStore) Load() (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	id := strings.TrimSpace(string(data))
	return id, id != ""
}

func (s *FileStore) Save(id string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(id+"\n"), 0o600)
}
