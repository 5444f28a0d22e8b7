package store

import (
	"errors"
	"testing"
	"time"

	"github.com/elliotrap/Widgeme/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStoreTest(t *testing.T) (*SQLiteStore, func()) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.StoredRecord{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return NewSQLiteStore(gdb), func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestCreateAssignsIDAndRoundTrips(t *testing.T) {
	s, cleanup := setupStoreTest(t)
	defer cleanup()

	rec, err := s.Create(KindHabit, Fields{FieldName: "晨跑", FieldDays: 28, FieldColor: "orange"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected store-assigned record ID")
	}

	fetched, err := s.Fetch(rec.ID)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	name, ok := fetched.Fields.String(FieldName)
	if !ok || name != "晨跑" {
		t.Fatalf("unexpected name field: %q", name)
	}

	// JSON 往返后整数以 float64 出现，访问器负责兼容
	days, ok := fetched.Fields.Int(FieldDays)
	if !ok || days != 28 {
		t.Fatalf("unexpected days field: %d", days)
	}
}

func TestFetchMissingRecord(t *testing.T) {
	s, cleanup := setupStoreTest(t)
	defer cleanup()

	if _, err := s.Fetch("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveUpdatesFields(t *testing.T) {
	s, cleanup := setupStoreTest(t)
	defer cleanup()

	rec, err := s.Create(KindHabit, Fields{FieldName: "阅读", FieldDays: 14, FieldColor: "blue"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	rec.Fields[FieldName] = "深度阅读"
	saved, err := s.Save(rec)
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	name, _ := saved.Fields.String(FieldName)
	if name != "深度阅读" {
		t.Fatalf("expected updated name, got %q", name)
	}

	days, _ := saved.Fields.Int(FieldDays)
	if days != 14 {
		t.Fatalf("expected days preserved, got %d", days)
	}
}

func TestSaveMissingRecord(t *testing.T) {
	s, cleanup := setupStoreTest(t)
	defer cleanup()

	_, err := s.Save(Record{ID: "ghost", Kind: KindHabit, Fields: Fields{FieldName: "x"}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, cleanup := setupStoreTest(t)
	defer cleanup()

	rec, err := s.Create(KindHabit, Fields{FieldName: "冥想"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := s.Delete(rec.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := s.Delete(rec.ID); err != nil {
		t.Fatalf("expected second delete to succeed, got %v", err)
	}
	if _, err := s.Fetch(rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected record gone, got %v", err)
	}
}

func TestQueryFiltersByKindAndPredicate(t *testing.T) {
	s, cleanup := setupStoreTest(t)
	defer cleanup()

	h1, _ := s.Create(KindHabit, Fields{FieldName: "晨跑"})
	h2, _ := s.Create(KindHabit, Fields{FieldName: "阅读"})

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
	s.Create(KindRecord, Fields{FieldHabit: h1.ID, FieldDate: day, FieldCompleted: true})
	s.Create(KindRecord, Fields{FieldHabit: h2.ID, FieldDate: day, FieldCompleted: true})

	habits, err := s.Query(KindHabit, MatchAll())
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(habits) != 2 {
		t.Fatalf("expected 2 habits, got %d", len(habits))
	}

	recs, err := s.Query(KindRecord, FieldEquals(FieldHabit, h1.ID))
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record for habit, got %d", len(recs))
	}
	ref, _ := recs[0].Fields.Reference(FieldHabit)
	if ref != h1.ID {
		t.Fatalf("unexpected habit reference %q", ref)
	}
}

func TestQuerySkipsUndecodableRows(t *testing.T) {
	s, cleanup := setupStoreTest(t)
	defer cleanup()

	if _, err := s.Create(KindHabit, Fields{FieldName: "晨跑"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// 手工写入一行损坏的字段 JSON
	broken := db.StoredRecord{ID: "broken-row", Kind: KindHabit, Fields: "{not json"}
	if err := db.DB.Create(&broken).Error; err != nil {
		t.Fatalf("failed to seed broken row: %v", err)
	}

	habits, err := s.Query(KindHabit, MatchAll())
	if err != nil {
		t.Fatalf("expected partial success, got error: %v", err)
	}
	if len(habits) != 1 {
		t.Fatalf("expected broken row to be dropped, got %d records", len(habits))
	}
}

func TestAvailable(t *testing.T) {
	s, cleanup := setupStoreTest(t)

	if !s.Available() {
		t.Fatal("expected store to be available")
	}

	cleanup()
	if s.Available() {
		t.Fatal("expected store to be unavailable after close")
	}
}
