package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestBlobStore_PutURLDelete(t *testing.T) {
	ctx := context.Background()
	s := NewBlobStore()

	ref, err := s.Put(ctx, "f1.pdf", strings.NewReader("hello"), 5, "application/pdf")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if !s.Has(ref) {
		t.Fatal("blob should exist after Put")
	}

	u, err := s.URLFor(ctx, ref, time.Minute)
	if err != nil {
		t.Fatalf("URLFor() error = %v", err)
	}
	if !strings.HasPrefix(u, "memory:///") {
		t.Errorf("URLFor() = %q", u)
	}

	if err := s.Delete(ctx, ref); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if s.Has(ref) {
		t.Fatal("blob should be gone after Delete")
	}
	if err := s.Delete(ctx, ref); err != nil {
		t.Fatalf("Delete() of missing blob error = %v", err)
	}
}

func TestBlobStore_ShortRead(t *testing.T) {
	s := NewBlobStore()
	if _, err := s.Put(context.Background(), "x", strings.NewReader("abc"), 10, ""); err == nil {
		t.Fatal("Put() with short body expected error")
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}

func TestBlobStore_FailDelete(t *testing.T) {
	ctx := context.Background()
	s := NewBlobStore()
	ref, _ := s.Put(ctx, "x", strings.NewReader("a"), 1, "")

	boom := errors.New("boom")
	s.FailDelete[ref] = boom
	if err := s.Delete(ctx, ref); !errors.Is(err, boom) {
		t.Fatalf("Delete() error = %v, want boom", err)
	}
	if !s.Has(ref) {
		t.Fatal("failed delete must keep the blob")
	}
}
