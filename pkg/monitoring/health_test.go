package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

func TestHealthChecker_Basic(t *testing.T) {
	hc := NewHealthChecker("svc", "v1")
	hc.AddCheck("ok", func() CheckResult { return CheckResult{Status: StatusHealthy} })
	status := hc.CheckHealth()
	if status.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %q", status.Status)
	}
}

func TestHealthChecker_DegradedAndUnhealthy(t *testing.T) {
	hc := NewHealthChecker("svc", "v1")
	hc.AddCheck("ok", func() CheckResult { return CheckResult{Status: StatusHealthy} })
	hc.AddCheck("slow", func() CheckResult { return CheckResult{Status: StatusDegraded} })
	if got := hc.CheckHealth().Status; got != StatusDegraded {
		t.Fatalf("expected degraded, got %q", got)
	}

	hc.AddCheck("weird", func() CheckResult { return CheckResult{Status: "unknown"} })
	if got := hc.CheckHealth().Status; got != StatusUnhealthy {
		t.Fatalf("expected unknown status to count as unhealthy, got %q", got)
	}
}

func TestHealthCheckerHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hc := NewHealthChecker("lookout", "v1")
	hc.AddCheck("db", func() CheckResult { return CheckResult{Status: StatusUnhealthy, Message: "down"} })

	router := gin.New()
	router.GET("/health", hc.Handler())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var body HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Service != "lookout" || body.Checks["db"].Message != "down" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestProbeHealthCheck(t *testing.T) {
	fail := errors.New("deals file unreadable")
	var probeErr error
	check := ProbeHealthCheck("Deal store", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Fatalf("expected probe deadline")
		}
		return probeErr
	})
	if res := check(); res.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %+v", res)
	}
	probeErr = fail
	res := check()
	if res.Status != StatusUnhealthy || !strings.Contains(res.Message, "deals file unreadable") {
		t.Fatalf("expected unhealthy with cause, got %+v", res)
	}
}

func TestDatabaseHealthCheck(t *testing.T) {
	if res := DatabaseHealthCheck(nil)(); res.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy for nil db, got %q", res.Status)
	}

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	mock.ExpectPing()

	if res := DatabaseHealthCheck(db)(); res.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRedisHealthCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	if res := RedisHealthCheck(client)(); res.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %+v", res)
	}

	mr.Close()
	if res := RedisHealthCheck(client)(); res.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy after shutdown, got %+v", res)
	}
}

func TestBreakerHealthCheck(t *testing.T) {
	open := true
	check := BreakerHealthCheck("serpapi", func() bool { return open })
	if res := check(); res.Status != StatusDegraded {
		t.Fatalf("expected degraded, got %q", res.Status)
	}
	open = false
	if res := check(); res.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %q", res.Status)
	}
}

func TestConfigurationHealthCheck(t *testing.T) {
	res := ConfigurationHealthCheck(map[string]string{"B_KEY": "", "A_KEY": "", "C_KEY": "set"})()
	if res.Status != StatusDegraded {
		t.Fatalf("expected degraded, got %q", res.Status)
	}
	if !strings.Contains(res.Message, "[A_KEY B_KEY]") {
		t.Fatalf("expected sorted missing keys, got %q", res.Message)
	}
}
