package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/docqa-client/internal/domain/commonModels"
	"github.com/akolanti/docqa-client/internal/domain/sessionModel"
)

func TestAppendUser_RejectsBlank(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"empty", "", true},
		{"spaces", "   ", true},
		{"tabs and newlines", "\t\n ", true},
		{"text", "What is X?", false},
		{"padded text", "  What is X?  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := InitTranscriptStore()
			idx, err := s.AppendUser(tt.content)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("AppendUser(%q) err = %v, want ErrInvalidInput", tt.content, err)
				}
				if s.Len() != 0 {
					t.Errorf("blank content created a turn")
				}
				return
			}
			if err != nil {
				t.Fatalf("AppendUser(%q) unexpected error: %v", tt.content, err)
			}
			if idx != 0 {
				t.Errorf("index = %d, want 0", idx)
			}
			if got := s.Turns()[0].Content; got != tt.content {
				t.Errorf("content = %q, want raw %q", got, tt.content)
			}
		})
	}
}

func TestAppendBot_KeepsOrderAndSources(t *testing.T) {
	s := InitTranscriptStore()
	_, _ = s.AppendUser("q1")
	s.AppendBot("a1", []commonModels.SourceRef{{Filename: "a.pdf", Page: 3}})
	_, _ = s.AppendUser("q2")
	idx := s.AppendBot("Query failed: boom", nil)

	if idx != 3 {
		t.Errorf("last index = %d, want 3", idx)
	}

	turns := s.Turns()
	wantRoles := []sessionModel.Role{sessionModel.RoleUser, sessionModel.RoleBot, sessionModel.RoleUser, sessionModel.RoleBot}
	for i, role := range wantRoles {
		if turns[i].Role != role {
			t.Errorf("turn %d role = %s, want %s", i, turns[i].Role, role)
		}
	}
	if len(turns[1].Sources) != 1 || turns[1].Sources[0].Filename != "a.pdf" || turns[1].Sources[0].Page != 3 {
		t.Errorf("unexpected sources: %+v", turns[1].Sources)
	}
	if turns[3].Sources != nil {
		t.Errorf("error turn should have no sources, got %+v", turns[3].Sources)
	}
}

func TestAppendBot_EmptySourcesStayPresent(t *testing.T) {
	s := InitTranscriptStore()
	s.AppendBot("answer", []commonModels.SourceRef{})
	turn := s.Turns()[0]
	if turn.Sources == nil {
		t.Error("empty source list should not collapse to absent")
	}
}

func TestTurns_IsDefensiveCopy(t *testing.T) {
	s := InitTranscriptStore()
	sources := []commonModels.SourceRef{{Filename: "a.pdf", Page: 1}}
	s.AppendBot("answer", sources)

	sources[0].Filename = "mutated-input.pdf"
	got := s.Turns()
	got[0].Content = "mutated"
	got[0].Sources[0].Filename = "mutated-output.pdf"

	again := s.Turns()[0]
	if again.Content != "answer" || again.Sources[0].Filename != "a.pdf" {
		t.Errorf("stored turn was modified from outside: %+v", again)
	}
}

func TestClear(t *testing.T) {
	s := InitTranscriptStore()
	_, _ = s.AppendUser("q")
	s.AppendBot("a", nil)
	s.Clear()

	if s.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", s.Len())
	}
	idx, _ := s.AppendUser("next")
	if idx != 0 {
		t.Errorf("first index after Clear = %d, want 0", idx)
	}
}

func TestCreatedAt_IsStamped(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s := InitTranscriptStore()
	s.now = func() time.Time { return fixed }
	_, _ = s.AppendUser("q")
	if got := s.Turns()[0].CreatedAt; !got.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", got, fixed)
	}
}

func TestTranscriptStore_ConcurrentAppends(t *testing.T) {
	s := InitTranscriptStore()
	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AppendBot("a", nil)
			_ = s.Turns()
		}()
	}
	wg.Wait()
	if s.Len() != writers {
		t.Errorf("Len = %d, want %d", s.Len(), writers)
	}
}

func TestClear_AdvancesGeneration(t *testing.T) {
	s := InitTranscriptStore()
	if s.Generation() != 0 {
		t.Fatalf("new store generation = %d, want 0", s.Generation())
	}

	_, _ = s.AppendUser("Q")
	s.AppendBot("A", nil)
	if s.Generation() != 0 {
		t.Error("appends must not change the generation")
	}

	s.Clear()
	s.Clear()
	if s.Generation() != 2 {
		t.Errorf("generation = %d, want 2", s.Generation())
	}
}

func TestFileStore_KeepsCompletionOrder(t *testing.T) {
	s := InitFileStore()
	for _, name := range []string{"f1.pdf", "f2.pdf", "f3.pdf"} {
		s.Add(commonModels.UploadedFileRecord{Name: name})
	}

	list := s.List()
	if len(list) != 3 || s.Len() != 3 {
		t.Fatalf("got %d files, want 3", len(list))
	}
	for i, want := range []string{"f1.pdf", "f2.pdf", "f3.pdf"} {
		if list[i].Name != want {
			t.Errorf("file %d = %s, want %s", i, list[i].Name, want)
		}
	}

	list[0].Name = "changed"
	if s.List()[0].Name != "f1.pdf" {
		t.Error("List should return a copy")
	}
}
