package objstore

import (
	"sync"
	"sync/atomic"
	"testing"
)

type obj struct{ id uint32 }

func newObj(id uint32) *obj { return &obj{id: id} }

func TestStore(t *testing.T) {
	s := New[*obj](1)

	a := s.Add(newObj)
	b := s.Add(newObj)
	if a.id != 1 || b.id != 2 {
		t.Fatalf("ids = %v, %v", a.id, b.id)
	}

	if got, ok := s.Get(2); !ok || got != b {
		t.Errorf("Get(2) = %v, %v", got, ok)
	}

	all := s.All()
	if len(all) != 2 || all[0] != a || all[1] != b {
		t.Errorf("All() = %v", all)
	}

	if _, ok := s.Delete(1); !ok {
		t.Error("first delete failed")
	}
	if _, ok := s.Delete(1); ok {
		t.Error("second delete succeeded")
	}
	if _, ok := s.Get(1); ok {
		t.Error("Get after delete succeeded")
	}
}

func TestDeleteOnce(t *testing.T) {
	s := New[*obj](1)
	s.Add(newObj)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.Delete(1); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if w := wins.Load(); w != 1 {
		t.Errorf("%v deletes won, want 1", w)
	}
}

func TestClear(t *testing.T) {
	s := New[*obj](10)
	s.Add(newObj)
	s.Add(newObj)

	cleared := s.Clear()
	if len(cleared) != 2 || cleared[0].id != 10 {
		t.Errorf("Clear() = %v", cleared)
	}
	if s.Len() != 0 {
		t.Errorf("Len after clear = %v", s.Len())
	}
}
