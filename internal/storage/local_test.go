package storage

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(LocalConfig{
		BasePath: t.TempDir(),
		BaseURL:  "http://localhost:8080/files",
	}, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}
	return s
}

func TestLocalStorage_PutGetRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	content := "fake audio bytes"
	key := "recordings/user1/rec1.webm"

	if err := s.Put(ctx, key, strings.NewReader(content), PutOptions{ContentType: "audio/webm"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rc, info, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(got) != content {
		t.Errorf("content = %q, want %q", got, content)
	}
	if info.Size != int64(len(content)) {
		t.Errorf("size = %d, want %d", info.Size, len(content))
	}
}

func TestLocalStorage_PutRejectsExistingKey(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	key := "recordings/user1/rec1.webm"
	if err := s.Put(ctx, key, strings.NewReader("first"), PutOptions{}); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}

	err := s.Put(ctx, key, strings.NewReader("second"), PutOptions{})
	if !IsKeyExists(err) {
		t.Errorf("expected ErrKeyExists, got %v", err)
	}

	// Overwrite allows replacement
	if err := s.Put(ctx, key, strings.NewReader("second"), PutOptions{Overwrite: true}); err != nil {
		t.Errorf("overwrite Put failed: %v", err)
	}
}

func TestLocalStorage_PutEnforcesMaxSize(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	key := "recordings/user1/big.wav"
	err := s.Put(ctx, key, strings.NewReader("0123456789"), PutOptions{MaxSize: 5})
	if !IsTooLarge(err) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	// The oversized partial write must not be left behind
	exists, err := s.Exists(ctx, key)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("oversized upload should have been cleaned up")
	}
}

func TestLocalStorage_GetMissing(t *testing.T) {
	s := newTestStorage(t)

	_, _, err := s.Get(context.Background(), "recordings/user1/missing.mp3")
	if !IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalStorage_DeleteIdempotent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	key := "recordings/user1/rec1.ogg"
	if err := s.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("second Delete should be a no-op, got %v", err)
	}
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	keys := []string{
		"",
		"../outside.txt",
		"recordings/../../etc/passwd",
	}

	for _, key := range keys {
		if err := s.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Errorf("Put(%q) should be rejected", key)
		}
	}
}

func TestLocalStorage_URL(t *testing.T) {
	s := newTestStorage(t)

	url, err := s.URL(context.Background(), "recordings/user1/rec1.webm", 0)
	if err != nil {
		t.Fatalf("URL failed: %v", err)
	}
	want := "http://localhost:8080/files/recordings/user1/rec1.webm"
	if url != want {
		t.Errorf("URL = %q, want %q", url, want)
	}
}

func TestRecordingKey(t *testing.T) {
	userID := uuid.New()

	key := RecordingKey(userID, "take-3.webm")
	if !strings.HasPrefix(key, "recordings/"+userID.String()+"/") {
		t.Errorf("key %q missing user prefix", key)
	}
	if !strings.HasSuffix(key, ".webm") {
		t.Errorf("key %q missing extension", key)
	}

	// Keys are unique per upload even for identical filenames
	if key2 := RecordingKey(userID, "take-3.webm"); key2 == key {
		t.Error("expected unique keys for repeated uploads")
	}
}

func TestIsAllowedAudioType(t *testing.T) {
	allowed := []string{
		"audio/webm",
		"audio/webm;codecs=opus",
		"audio/mpeg",
		"AUDIO/WAV",
	}
	for _, ct := range allowed {
		if !IsAllowedAudioType(ct) {
			t.Errorf("expected %q to be allowed", ct)
		}
	}

	denied := []string{
		"video/webm",
		"application/octet-stream",
		"text/plain",
		"",
	}
	for _, ct := range denied {
		if IsAllowedAudioType(ct) {
			t.Errorf("expected %q to be denied", ct)
		}
	}
}
