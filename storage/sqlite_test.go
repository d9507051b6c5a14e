package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/richinex/modelgate/model"
)

func sampleRun(id string) model.Run {
	return model.Run{
		ID:       id,
		Provider: "OPENAI",
		Model:    "gpt-4o-mini",
		Output:   "done",
		ToolCalls: []model.ToolInvocation{
			model.Succeeded("now", "{}"),
			model.Failed("http_fetch", `{"url":"https://evil.test"}`, errors.New("url not allowed: evil.test")),
		},
		DurationMs: 12,
	}
}

func TestSqliteStorageSaveAndGetRun(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	if err := storage.SaveRun(ctx, sampleRun("run_1"), "what time is it"); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	entry, err := storage.GetRun(ctx, "run_1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}

	if entry.Prompt != "what time is it" || entry.Run.Output != "done" || entry.Run.DurationMs != 12 {
		t.Errorf("unexpected entry %+v", entry)
	}
	if len(entry.Run.ToolCalls) != 2 {
		t.Fatalf("expected 2 tool calls, got %d", len(entry.Run.ToolCalls))
	}
	if first := entry.Run.ToolCalls[0]; first.Name != "now" || !first.OK || first.Error != nil {
		t.Errorf("unexpected first call %+v", first)
	}
	second := entry.Run.ToolCalls[1]
	if second.OK || second.Error == nil || *second.Error != "url not allowed: evil.test" {
		t.Errorf("unexpected second call %+v", second)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("expected creation time")
	}
}

func TestSqliteStorageGetRunNotFound(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	_, err = storage.GetRun(context.Background(), "missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestSqliteStorageAppendOnly(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()
	if err := storage.SaveRun(ctx, sampleRun("run_dup"), "p"); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if err := storage.SaveRun(ctx, sampleRun("run_dup"), "p"); err == nil {
		t.Error("saving the same run twice should fail")
	}

	entry, err := storage.GetRun(ctx, "run_dup")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if len(entry.Run.ToolCalls) != 2 {
		t.Errorf("failed duplicate save must not add tool calls, got %d", len(entry.Run.ToolCalls))
	}
}

func TestSqliteStorageListRuns(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := storage.SaveRun(ctx, sampleRun(fmt.Sprintf("run_%d", i)), "p"); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	entries, err := storage.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Run.ID != "run_2" {
		t.Errorf("expected newest first, got %s", entries[0].Run.ID)
	}
}

func TestOpenSqliteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.db")

	storage, err := OpenSqlite(path)
	if err != nil {
		t.Fatalf("OpenSqlite failed: %v", err)
	}
	defer storage.Close()

	if err := storage.SaveRun(context.Background(), sampleRun("run_file"), "p"); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
}
