package store

import (
	"sync"

	"github.com/akolanti/docqa-client/internal/domain/commonModels"
)

// FileStore keeps the uploaded files in completion order. There is no remove.
type FileStore struct {
	fileMutex *sync.RWMutex
	files     []commonModels.UploadedFileRecord
}

func InitFileStore() *FileStore {
	return &FileStore{
		fileMutex: new(sync.RWMutex),
	}
}

func (store *FileStore) Add(record commonModels.UploadedFileRecord) {
	store.fileMutex.Lock()
	defer store.fileMutex.Unlock()
	store.files = append(store.files, record)
}

func (store *FileStore) Len() int {
	store.fileMutex.RLock()
	defer store.fileMutex.RUnlock()
	return len(store.files)
}

func (store *FileStore) List() []commonModels.UploadedFileRecord {
	store.fileMutex.RLock()
	defer store.fileMutex.RUnlock()
	copied := make([]commonModels.UploadedFileRecord, len(store.files))
	copy(copied, store.files)
	return copied
}
