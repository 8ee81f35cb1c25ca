package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"guerrilla-go-app/backend/internal/app"
	"guerrilla-go-app/backend/internal/bootstrap"
	"guerrilla-go-app/backend/internal/config"
	"guerrilla-go-app/backend/internal/domain/action"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	os.Setenv("LOG_FILE", filepath.Join(os.TempDir(), "guerrilla-integration-test.log"))
	os.Exit(m.Run())
}

// newTestApplication 用内存 SQLite 组装完整应用，避免依赖真实文件。
func newTestApplication(t *testing.T) *bootstrap.Application {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&action.Record{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	resources := &app.Resources{
		Flags: config.RuntimeFlags{Mode: config.ModeDemo, Port: "0"},
		DB:    db,
	}

	return bootstrap.BuildApplication(zap.NewNop().Sugar(), resources)
}

func TestDashboardAPIFlow(t *testing.T) {
	application := newTestApplication(t)
	server := httptest.NewServer(application.Router)
	t.Cleanup(server.Close)

	// 启动前：动作列表为空，指标全零。
	var actions []map[string]any
	getJSON(t, server.URL+"/api/actions", &actions)
	if len(actions) != 0 {
		t.Fatalf("expected empty action list before first cycle, got %d", len(actions))
	}

	var metrics map[string]float64
	getJSON(t, server.URL+"/api/metrics", &metrics)
	if metrics["viralScore"] != 0 || metrics["totalReach"] != 0 {
		t.Fatalf("expected zero metrics before first cycle, got %+v", metrics)
	}

	// 跑一个完整周期后，所有接口都应看到七条记录。
	application.Scheduler.RunCycleOnce(context.Background())

	getJSON(t, server.URL+"/api/actions", &actions)
	if len(actions) != 7 {
		t.Fatalf("expected 7 actions after one cycle, got %d", len(actions))
	}

	getJSON(t, server.URL+"/api/metrics", &metrics)
	if metrics["viralScore"] != 14 {
		t.Fatalf("expected viralScore 14 for 7 actions, got %v", metrics["viralScore"])
	}
	if metrics["trendsIdentified"] != 7 {
		t.Fatalf("expected trendsIdentified 7, got %v", metrics["trendsIdentified"])
	}
	if metrics["totalReach"] != 10500 {
		t.Fatalf("expected totalReach 10500, got %v", metrics["totalReach"])
	}
	if metrics["earnedMediaValue"] != 525 {
		t.Fatalf("expected earnedMediaValue 525, got %v", metrics["earnedMediaValue"])
	}

	var status map[string]any
	getJSON(t, server.URL+"/api/status", &status)
	if status["is_running"] != false {
		t.Fatalf("expected idle scheduler, got %v", status["is_running"])
	}
	if status["action_count"] != float64(1) {
		t.Fatalf("expected one completed cycle, got %v", status["action_count"])
	}
	if status["total_actions"] != float64(7) {
		t.Fatalf("expected 7 logged actions, got %v", status["total_actions"])
	}

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", resp.StatusCode)
	}
}

func TestPrometheusEndpointExposed(t *testing.T) {
	application := newTestApplication(t)
	server := httptest.NewServer(application.Router)
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", resp.StatusCode)
	}
}

func getJSON(t *testing.T, url string, target any) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}
