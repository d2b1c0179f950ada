package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/agrimarket/backend/internal/database"
	"github.com/agrimarket/backend/internal/models"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "logs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := database.MigrateShared(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestDBHandlerStoresErrorsOnly(t *testing.T) {
	db := openDB(t)
	h := NewDBHandler(db)

	var out bytes.Buffer
	logger := slog.New(NewMultiHandler(slog.NewJSONHandler(&out, nil), h)).With("request_id", "req-1")

	logger.Info("bid placed", "action", "bid_create")
	logger.Error("failed to update bid",
		"action", "bid_update",
		"username", "c1",
		"error", "disk full",
		"latency_ms", 12.6,
		"bid_id", 7,
	)
	h.Stop()

	var logs []models.SystemLog
	if err := db.Find(&logs).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("want 1 stored record, got %d", len(logs))
	}
	l := logs[0]
	if l.Level != "ERROR" || l.RequestID != "req-1" || l.Action != "bid_update" || l.Error != "disk full" || l.LatencyMs != 13 {
		t.Fatalf("unexpected record %+v", l)
	}
	if l.Username == nil || *l.Username != "c1" {
		t.Fatalf("username not mapped: %v", l.Username)
	}
	var extra map[string]interface{}
	if err := json.Unmarshal(l.Extra, &extra); err != nil || extra["bid_id"] != float64(7) {
		t.Fatalf("extra = %s, %v", l.Extra, err)
	}

	if n := bytes.Count(out.Bytes(), []byte("\n")); n != 2 {
		t.Fatalf("stdout handler should see both records, saw %d", n)
	}
}

func TestPrune(t *testing.T) {
	db := openDB(t)
	now := time.Now()
	db.Create(&models.SystemLog{Timestamp: now.Add(-40 * 24 * time.Hour), Level: "ERROR", Message: "old"})
	db.Create(&models.SystemLog{Timestamp: now, Level: "ERROR", Message: "new"})

	deleted, err := Prune(db, now.Add(-Retention))
	if err != nil || deleted != 1 {
		t.Fatalf("prune deleted %d, %v", deleted, err)
	}

	var left []models.SystemLog
	db.Find(&left)
	if len(left) != 1 || left[0].Message != "new" {
		t.Fatalf("unexpected remaining logs %+v", left)
	}
}

func TestMultiHandlerEnabled(t *testing.T) {
	h := NewMultiHandler(&DBHandler{})
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should not be enabled when only the DB handler is attached")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("error should be enabled")
	}
}
