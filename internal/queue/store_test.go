package queue_test

import (
	"context"
	"fmt"
	"testing"

	"murmur/internal/queue"
	"murmur/internal/testsupport"
)

func addItem(t *testing.T, store *queue.Store, source string) *queue.Item {
	t.Helper()
	item, err := store.NewItem(context.Background(), source, "", "srt", "en-US")
	if err != nil {
		t.Fatalf("NewItem failed: %v", err)
	}
	return item
}

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := addItem(t, store, "/audio/sample.wav")
	if item.ID == 0 {
		t.Fatal("expected item ID to be assigned")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("new items must be pending, got %q", item.Status)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.SourcePath != "/audio/sample.wav" {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}
}

func TestNewItemRequiresSourcePath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.NewItem(context.Background(), "  ", "", "txt", "en"); err == nil {
		t.Fatal("expected error for blank source path")
	}
}

func TestNextPendingInsertionOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := addItem(t, store, "/audio/a.wav")
	addItem(t, store, "/audio/b.wav")

	next, err := store.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected first inserted item, got %#v", next)
	}

	// A terminal first item yields the second.
	next.SetFailed("input not found: /audio/a.wav")
	if err := store.Update(ctx, next); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	next, err = store.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if next == nil || next.SourcePath != "/audio/b.wav" {
		t.Fatalf("expected second item, got %#v", next)
	}
}

func TestUpdatePersistsTransitions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := addItem(t, store, "/audio/c.wav")
	item.Status = queue.StatusTranscribing
	item.DurationSeconds = 42.5
	item.SetProgress("Transcribing", 37.5)
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusTranscribing {
		t.Errorf("status not persisted, got %q", fetched.Status)
	}
	if fetched.DurationSeconds != 42.5 || fetched.ProgressPercent != 37.5 {
		t.Errorf("progress not persisted: %#v", fetched)
	}

	fetched.SetCompleted()
	if err := store.Update(ctx, fetched); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	final, _ := store.GetByID(ctx, item.ID)
	if final.Status != queue.StatusCompleted || final.ProgressPercent != 100 {
		t.Errorf("completion not persisted: %#v", final)
	}
}

func TestResetStuckTranscribing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := addItem(t, store, "/audio/d.wav")
	item.Status = queue.StatusTranscribing
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	count, err := store.CountTranscribing(ctx)
	if err != nil || count != 1 {
		t.Fatalf("CountTranscribing = %d, %v", count, err)
	}

	reset, err := store.ResetStuckTranscribing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckTranscribing failed: %v", err)
	}
	if reset != 1 {
		t.Fatalf("expected 1 reset item, got %d", reset)
	}

	fetched, _ := store.GetByID(ctx, item.ID)
	if fetched.Status != queue.StatusPending {
		t.Errorf("expected pending after reset, got %q", fetched.Status)
	}
}

func TestRetryFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	failed := addItem(t, store, "/audio/e.wav")
	failed.SetFailed("analysis failed")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatal(err)
	}
	completed := addItem(t, store, "/audio/f.wav")
	completed.SetCompleted()
	if err := store.Update(ctx, completed); err != nil {
		t.Fatal(err)
	}

	retried, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if retried != 1 {
		t.Fatalf("expected 1 retried item, got %d", retried)
	}

	fetched, _ := store.GetByID(ctx, failed.ID)
	if fetched.Status != queue.StatusPending || fetched.ErrorMessage != "" {
		t.Errorf("retry did not reset item: %#v", fetched)
	}
	untouched, _ := store.GetByID(ctx, completed.ID)
	if untouched.Status != queue.StatusCompleted {
		t.Errorf("completed item must not be retried: %#v", untouched)
	}
}

func TestRetryFailedSelectedIDs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	a := addItem(t, store, "/audio/g.wav")
	a.SetFailed("x")
	_ = store.Update(ctx, a)
	b := addItem(t, store, "/audio/h.wav")
	b.SetFailed("y")
	_ = store.Update(ctx, b)

	retried, err := store.RetryFailed(ctx, a.ID)
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if retried != 1 {
		t.Fatalf("expected 1 retried item, got %d", retried)
	}
	second, _ := store.GetByID(ctx, b.ID)
	if second.Status != queue.StatusFailed {
		t.Errorf("unselected item was retried: %#v", second)
	}
}

func TestClearVariants(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	pending := addItem(t, store, "/audio/i.wav")
	done := addItem(t, store, "/audio/j.wav")
	done.SetCompleted()
	_ = store.Update(ctx, done)
	bad := addItem(t, store, "/audio/k.wav")
	bad.SetFailed("z")
	_ = store.Update(ctx, bad)

	if n, err := store.ClearCompleted(ctx); err != nil || n != 1 {
		t.Fatalf("ClearCompleted = %d, %v", n, err)
	}
	if n, err := store.ClearFailed(ctx); err != nil || n != 1 {
		t.Fatalf("ClearFailed = %d, %v", n, err)
	}
	items, _ := store.List(ctx)
	if len(items) != 1 || items[0].ID != pending.ID {
		t.Fatalf("expected only the pending item to remain: %#v", items)
	}
	if n, err := store.Clear(ctx); err != nil || n != 1 {
		t.Fatalf("Clear = %d, %v", n, err)
	}
}

func TestHealthCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		addItem(t, store, fmt.Sprintf("/audio/p%d.wav", i))
	}
	failed := addItem(t, store, "/audio/q.wav")
	failed.SetFailed("boom")
	_ = store.Update(ctx, failed)

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 4 || health.Pending != 3 || health.Failed != 1 {
		t.Fatalf("unexpected health summary: %#v", health)
	}
}

func TestFindBySourcePathSkipsTerminal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := addItem(t, store, "/audio/r.wav")
	found, err := store.FindBySourcePath(ctx, "/audio/r.wav")
	if err != nil || found == nil || found.ID != item.ID {
		t.Fatalf("expected to find pending item: %#v, %v", found, err)
	}

	item.SetCompleted()
	_ = store.Update(ctx, item)
	found, err = store.FindBySourcePath(ctx, "/audio/r.wav")
	if err != nil {
		t.Fatal(err)
	}
	if found != nil {
		t.Fatalf("terminal items must not block re-enqueue: %#v", found)
	}
}

func TestParseStatus(t *testing.T) {
	if s, ok := queue.ParseStatus(" Pending "); !ok || s != queue.StatusPending {
		t.Errorf("ParseStatus = %v, %v", s, ok)
	}
	if _, ok := queue.ParseStatus("ripping"); ok {
		t.Error("unknown status accepted")
	}
	if !queue.StatusFailed.IsTerminal() || queue.StatusPending.IsTerminal() {
		t.Error("terminal classification wrong")
	}
}
