package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

type memObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{objects: make(map[string][]byte)}
}

func (m *memObjectStore) Put(_ context.Context, name string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[name] = append([]byte(nil), data...)
	return nil
}

func (m *memObjectStore) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[name]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (m *memObjectStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			names = append(names, k)
		}
	}
	return names, nil
}

func TestArchiveSaveObjectName(t *testing.T) {
	store := newMemObjectStore()
	archive := NewArchiveService(store)
	archive.newID = func() string { return "id-1" }

	r := reading(5)
	if err := archive.Save(context.Background(), r); err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := "readings/2026-10-16/12-00-05-id-1.json"
	if _, ok := store.objects[want]; !ok {
		t.Fatalf("expected object %q, have %v", want, store.objects)
	}
}

func TestArchiveListOrderedAndLimited(t *testing.T) {
	store := newMemObjectStore()
	archive := NewArchiveService(store)
	ctx := context.Background()

	for _, i := range []int{3, 1, 2} {
		if err := archive.Save(ctx, reading(i)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	store.objects["readings/2026-10-16/zz-broken.json"] = []byte("{")

	all, err := archive.List(ctx, "2026-10-16", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(all))
	}
	for i, r := range all {
		if r.Timestamp != reading(i+1).Timestamp {
			t.Fatalf("all[%d] = %q, want %q", i, r.Timestamp, reading(i+1).Timestamp)
		}
	}

	limited, err := archive.List(ctx, "2026-10-16", 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("expected 2 readings, got %d (err %v)", len(limited), err)
	}
}

func TestArchiveListRejectsBadDay(t *testing.T) {
	archive := NewArchiveService(newMemObjectStore())
	if _, err := archive.List(context.Background(), "16/10/2026", 0); err == nil {
		t.Fatalf("expected error for malformed day")
	}
}

func TestArchiveSavePropagatesStoreError(t *testing.T) {
	store := newMemObjectStore()
	store.putErr = errors.New("bucket gone")
	if err := NewArchiveService(store).Save(context.Background(), reading(1)); err == nil {
		t.Fatalf("expected error from Put")
	}
}
