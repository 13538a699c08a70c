package sync_test

import (
	"sync"
	"testing"

	xsync "github.com/arrp-org/arrp/base/sync"
)

func TestMap(t *testing.T) {
	var m xsync.Map[string, int]
	if _, ok := m.Load("a"); ok {
		t.Error("Load on an empty map reported a value")
	}
	m.Store("a", 1)
	got, ok := m.Load("a")
	if !ok || got != 1 {
		t.Errorf("Load(a) = (%d, %t), want (1, true)", got, ok)
	}
	if got, loaded := m.LoadOrStore("a", 2); !loaded || got != 1 {
		t.Errorf("LoadOrStore(a, 2) = (%d, %t), want (1, true)", got, loaded)
	}
	if got, loaded := m.LoadOrStore("b", 2); loaded || got != 2 {
		t.Errorf("LoadOrStore(b, 2) = (%d, %t), want (2, false)", got, loaded)
	}
	if m.Size() != 2 {
		t.Errorf("Size() = %d, want 2", m.Size())
	}
}

func TestMapConcurrent(t *testing.T) {
	var m xsync.Map[int, int]
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Store(i, i*i)
		}()
	}
	wg.Wait()
	for i := 0; i < 100; i++ {
		if got, ok := m.Load(i); !ok || got != i*i {
			t.Errorf("Load(%d) = (%d, %t), want (%d, true)", i, got, ok, i*i)
		}
	}
}
