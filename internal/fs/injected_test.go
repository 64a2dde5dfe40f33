package fs

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func TestFaulty_Fail_ReturnsInjectedErrorOnlyForMatchingPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.wiki")
	good := filepath.Join(dir, "good.wiki")

	f := NewFaulty(NewReal())
	f.Fail(OpWriteFileAtomic, bad, syscall.ENOSPC)

	err := f.WriteFileAtomic(bad, []byte("x"), 0o644)
	if !errors.Is(err, syscall.ENOSPC) {
		t.Fatalf("err=%v, want ENOSPC", err)
	}

	if !IsInjected(err) {
		t.Fatalf("IsInjected(%v)=false, want true", err)
	}

	if err := f.WriteFileAtomic(good, []byte("x"), 0o644); err != nil {
		t.Fatalf("unexpected error on unfaulted path: %v", err)
	}

	if got, want := f.Calls(OpWriteFileAtomic), 2; got != want {
		t.Fatalf("calls=%d, want=%d", got, want)
	}

	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Fatalf("failed write must not create the file, stat err=%v", err)
	}
}

func TestIsInjected_ReturnsFalseForRealErrors(t *testing.T) {
	t.Parallel()

	_, err := NewReal().ReadFile(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error")
	}

	if IsInjected(err) {
		t.Fatalf("IsInjected(%v)=true, want false", err)
	}

	if IsInjected(nil) {
		t.Fatal("IsInjected(nil)=true, want false")
	}
}
