package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStore_MissingFileMeansNoIdentity(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session.json"))
	_, err := s.Load()
	if !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("err = %v, want %v", err, ErrNoIdentity)
	}
}

func TestStore_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewStore(path)

	want := Identity{WalletID: "0xabc", Username: "ana"}
	if err := s.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestStore_EmptyWalletMeansNoIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"wallet":"","username":"ana"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := NewStore(path).Load()
	if !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("err = %v, want %v", err, ErrNoIdentity)
	}
}
