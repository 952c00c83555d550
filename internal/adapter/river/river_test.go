package river_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	goriver "github.com/riverqueue/river"

	_ "modernc.org/sqlite"

	riveradapter "github.com/neomorfeo/leadrecon/internal/adapter/river"
	"github.com/neomorfeo/leadrecon/internal/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := t.TempDir() + "/river_test.db"
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		t.Fatalf("setting WAL: %v", err)
	}

	return db
}

// startClient builds and starts a client, and stops it when the test ends.
// It subscribes to job completions before starting so no event is missed.
func startClient(t *testing.T, opts riveradapter.Options) (*riveradapter.Client, <-chan *goriver.Event) {
	t.Helper()

	db := setupTestDB(t)
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := riveradapter.Setup(context.Background(), db, opts)
	if err != nil {
		t.Fatalf("river setup: %v", err)
	}

	events, cancel := client.Subscribe(goriver.EventKindJobCompleted)
	t.Cleanup(cancel)

	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("river start: %v", err)
	}
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			t.Errorf("river stop: %v", err)
		}
	})

	return client, events
}

func TestNotifier_Notify_EnqueuesJob(t *testing.T) {
	client, events := startClient(t, riveradapter.Options{})

	notifier := riveradapter.NewNotifier(client)
	err := notifier.Notify(context.Background(), domain.Notification{
		Kind:  domain.NotificationBulkFixed,
		Count: 2,
		Total: 3,
	})
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	select {
	case event := <-events:
		if event.Job.Kind != "notification.published" {
			t.Errorf("job kind = %q, want %q", event.Job.Kind, "notification.published")
		}
		args := string(event.Job.EncodedArgs)
		for _, want := range []string{`"kind":"bulk_fixed"`, `"count":2`, `"total":3`, `"message":"fixed 2 of 3 leads"`} {
			if !strings.Contains(args, want) {
				t.Errorf("encoded args missing %s, got: %s", want, args)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job completion")
	}
}

func TestSweepWorker_RunsSweep(t *testing.T) {
	swept := make(chan struct{}, 1)
	sweeps := &riveradapter.SweepWorker{
		Sweep: func(context.Context) error {
			select {
			case swept <- struct{}{}:
			default:
			}
			return nil
		},
	}
	client, events := startClient(t, riveradapter.Options{Sweeps: sweeps})

	if _, err := client.Insert(context.Background(), riveradapter.SweepJobArgs{}, nil); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	select {
	case <-swept:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for sweep")
	}

	select {
	case event := <-events:
		if event.Job.Kind != "reconciliation.sweep" {
			t.Errorf("job kind = %q, want %q", event.Job.Kind, "reconciliation.sweep")
		}
		if event.Job.MaxAttempts != 1 {
			t.Errorf("MaxAttempts = %d, want 1", event.Job.MaxAttempts)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job completion")
	}
}
