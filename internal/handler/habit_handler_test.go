package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elliotrap/Widgeme/internal/db"
	"github.com/elliotrap/Widgeme/internal/habit"
	"github.com/elliotrap/Widgeme/internal/service"
	"github.com/elliotrap/Widgeme/internal/store"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestAPI(t *testing.T) (*API, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.StoredRecord{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	recordStore := store.NewSQLiteStore(gdb)
	tracker := service.NewHabitTracker(recordStore, recordStore)
	api := NewAPI(tracker)

	return api, func() {
		tracker.Close()
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return out
}

func TestCreateHabitRequiresName(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/admin/api/habits", map[string]any{"name": "   "})

	api.CreateHabit(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestCreateHabitAppliesDefaults(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/admin/api/habits", map[string]any{"name": "晨跑", "color": "sparkly"})

	api.CreateHabit(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["name"] != "晨跑" {
		t.Fatalf("unexpected name %v", body["name"])
	}
	if int(body["days"].(float64)) != habit.DefaultDisplayDays {
		t.Fatalf("expected default days, got %v", body["days"])
	}
	if body["color"] != string(habit.ColorGreen) {
		t.Fatalf("expected fallback green, got %v", body["color"])
	}
	if body["id"] == "" {
		t.Fatal("expected store-assigned id")
	}
}

func TestMarkHabitUnknownID(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/admin/api/habits/ghost/logs", map[string]any{})
	c.Params = gin.Params{gin.Param{Key: "id", Value: "ghost"}}

	api.MarkHabit(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestMarkHabitRejectsBadDate(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	res := <-api.Tracker().AddHabit("阅读", 28, habit.ColorGreen)
	if res.Err != nil {
		t.Fatalf("AddHabit returned error: %v", res.Err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/admin/api/habits/"+res.Habit.ID+"/logs", map[string]any{"date": "06/01/2025"})
	c.Params = gin.Params{gin.Param{Key: "id", Value: res.Habit.ID}}

	api.MarkHabit(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestMarkAndStatsFlow(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	res := <-api.Tracker().AddHabit("晨跑", 7, habit.ColorOrange)
	if res.Err != nil {
		t.Fatalf("AddHabit returned error: %v", res.Err)
	}
	h := res.Habit

	today := time.Now().Format(dateFormat)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/admin/api/habits/"+h.ID+"/logs", map[string]any{"date": today})
	c.Params = gin.Params{gin.Param{Key: "id", Value: h.ID}}

	api.MarkHabit(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/api/habits/"+h.ID+"/stats", nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: h.ID}}

	api.HabitStats(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if int(body["current_streak"].(float64)) != 1 {
		t.Fatalf("expected current streak 1, got %v", body["current_streak"])
	}
	if int(body["longest_streak"].(float64)) != 1 {
		t.Fatalf("expected longest streak 1, got %v", body["longest_streak"])
	}

	grid, ok := body["grid"].([]any)
	if !ok || len(grid) != 7 {
		t.Fatalf("expected 7-slot grid, got %v", body["grid"])
	}
	if grid[6] != true {
		t.Fatalf("expected today marked in grid, got %v", grid)
	}
}

func TestUpdateHabitPreservesOtherFields(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	res := <-api.Tracker().AddHabit("跑步", 40, habit.ColorBlue)
	if res.Err != nil {
		t.Fatalf("AddHabit returned error: %v", res.Err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPut, "/admin/api/habits/"+res.Habit.ID, map[string]any{"name": "夜跑"})
	c.Params = gin.Params{gin.Param{Key: "id", Value: res.Habit.ID}}

	api.UpdateHabit(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["name"] != "夜跑" {
		t.Fatalf("expected renamed habit, got %v", body["name"])
	}
	if int(body["days"].(float64)) != 40 {
		t.Fatalf("expected days preserved, got %v", body["days"])
	}
	if body["color"] != string(habit.ColorBlue) {
		t.Fatalf("expected color preserved, got %v", body["color"])
	}
}

func TestDeleteHabitCleansCache(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	res := <-api.Tracker().AddHabit("冥想", 28, habit.ColorPurple)
	if res.Err != nil {
		t.Fatalf("AddHabit returned error: %v", res.Err)
	}
	if mark := <-api.Tracker().Mark(res.Habit, time.Now(), true); mark.Err != nil {
		t.Fatalf("Mark returned error: %v", mark.Err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/admin/api/habits/"+res.Habit.ID, nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: res.Habit.ID}}

	api.DeleteHabit(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	if _, ok := api.Tracker().HabitByID(res.Habit.ID); ok {
		t.Fatal("expected habit removed from cache")
	}
	if got := len(api.Tracker().Records()); got != 0 {
		t.Fatalf("expected records cleaned from cache, got %d", got)
	}
}
