package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/docqa-client/internal/domain/commonModels"
	"github.com/akolanti/docqa-client/internal/domain/sessionModel"
)

var ErrInvalidInput = errors.New("question is empty")

// TranscriptStore is the append only conversation log. Clear is the only way to
// drop turns and nothing ever edits a stored turn.
type TranscriptStore struct {
	lock       *sync.RWMutex
	turns      []sessionModel.Turn
	generation uint64
	now        func() time.Time
}

func InitTranscriptStore() *TranscriptStore {
	return &TranscriptStore{
		lock: new(sync.RWMutex),
		now:  time.Now,
	}
}

func (store *TranscriptStore) AppendUser(content string) (int, error) {
	if strings.TrimSpace(content) == "" {
		return -1, ErrInvalidInput
	}
	return store.append(sessionModel.Turn{Role: sessionModel.RoleUser, Content: content}), nil
}

func (store *TranscriptStore) AppendBot(content string, sources []commonModels.SourceRef) int {
	turn := sessionModel.Turn{Role: sessionModel.RoleBot, Content: content}
	if sources != nil {
		turn.Sources = make([]commonModels.SourceRef, len(sources))
		copy(turn.Sources, sources)
	}
	return store.append(turn)
}

func (store *TranscriptStore) append(turn sessionModel.Turn) int {
	store.lock.Lock()
	defer store.lock.Unlock()
	turn.CreatedAt = store.now()
	store.turns = append(store.turns, turn)
	return len(store.turns) - 1
}

func (store *TranscriptStore) Clear() {
	store.lock.Lock()
	defer store.lock.Unlock()
	store.turns = nil
	store.generation++
}

// Generation counts the clears so far. Two reads with the same generation see
// the same transcript prefix.
func (store *TranscriptStore) Generation() uint64 {
	store.lock.RLock()
	defer store.lock.RUnlock()
	return store.generation
}

func (store *TranscriptStore) Len() int {
	store.lock.RLock()
	defer store.lock.RUnlock()
	return len(store.turns)
}

// Turns returns a copy, callers may keep or modify it freely.
func (store *TranscriptStore) Turns() []sessionModel.Turn {
	store.lock.RLock()
	defer store.lock.RUnlock()
	copied := make([]sessionModel.Turn, len(store.turns))
	for i, turn := range store.turns {
		copied[i] = turn.Clone()
	}
	return copied
}
