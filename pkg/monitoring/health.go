package monitoring

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Timestamp int64                  `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// CheckResult represents the result of an individual health check
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// HealthChecker manages and executes health checks
type HealthChecker struct {
	service string
	version string

	mu     sync.RWMutex
	checks map[string]HealthCheck
}

// HealthCheck is a function that performs a health check
type HealthCheck func() CheckResult

// NewHealthChecker creates a new health checker instance
func NewHealthChecker(service, version string) *HealthChecker {
	return &HealthChecker{
		service: service,
		version: version,
		checks:  make(map[string]HealthCheck),
	}
}

// AddCheck adds a health check to the checker
func (hc *HealthChecker) AddCheck(name string, check HealthCheck) {
	hc.mu.Lock()
	hc.checks[name] = check
	hc.mu.Unlock()
}

// CheckHealth runs all health checks and returns the overall status
func (hc *HealthChecker) CheckHealth() HealthStatus {
	status := HealthStatus{
		Service:   hc.service,
		Version:   hc.version,
		Timestamp: time.Now().Unix(),
		Checks:    make(map[string]CheckResult),
	}

	hc.mu.RLock()
	checks := make(map[string]HealthCheck, len(hc.checks))
	for name, check := range hc.checks {
		checks[name] = check
	}
	hc.mu.RUnlock()

	anyUnhealthy := false
	anyDegraded := false
	for name, check := range checks {
		result := check()
		status.Checks[name] = result
		switch result.Status {
		case StatusHealthy:
		case StatusDegraded:
			anyDegraded = true
		default:
			anyUnhealthy = true
		}
	}

	switch {
	case anyUnhealthy:
		status.Status = StatusUnhealthy
	case anyDegraded:
		status.Status = StatusDegraded
	default:
		status.Status = StatusHealthy
	}

	return status
}

// Handler returns a middleware handler for the health check endpoint
func (hc *HealthChecker) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		health := hc.CheckHealth()
		statusCode := http.StatusOK
		if health.Status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, health)
	}
}

func timed(start time.Time, status, message string) CheckResult {
	return CheckResult{Status: status, Message: message, Latency: time.Since(start).String()}
}

const probeTimeout = 5 * time.Second

// ProbeHealthCheck reports unhealthy when probe fails within five seconds.
func ProbeHealthCheck(name string, probe func(ctx context.Context) error) HealthCheck {
	return func() CheckResult {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		if err := probe(ctx); err != nil {
			return timed(start, StatusUnhealthy, fmt.Sprintf("%s check failed: %v", name, err))
		}
		return timed(start, StatusHealthy, name+" reachable")
	}
}

// DatabaseHealthCheck pings db.
func DatabaseHealthCheck(db *sql.DB) HealthCheck {
	if db == nil {
		return unavailable("Database connection is nil")
	}
	return ProbeHealthCheck("Database", db.PingContext)
}

// RedisHealthCheck pings a redis client.
func RedisHealthCheck(client goredis.UniversalClient) HealthCheck {
	if client == nil {
		return unavailable("Redis client is nil")
	}
	return ProbeHealthCheck("Redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

func unavailable(message string) HealthCheck {
	return func() CheckResult {
		return CheckResult{Status: StatusUnhealthy, Message: message}
	}
}

// BreakerHealthCheck reports degraded while an upstream circuit breaker is open.
func BreakerHealthCheck(name string, open func() bool) HealthCheck {
	return func() CheckResult {
		start := time.Now()
		if open != nil && open() {
			return timed(start, StatusDegraded, fmt.Sprintf("%s circuit breaker open", name))
		}
		return timed(start, StatusHealthy, fmt.Sprintf("%s circuit breaker closed", name))
	}
}

// ConfigurationHealthCheck reports degraded while any value in configs is
// empty. Stored data stays servable without upstream credentials.
func ConfigurationHealthCheck(configs map[string]string) HealthCheck {
	return func() CheckResult {
		start := time.Now()
		missing := []string{}
		for key, value := range configs {
			if value == "" {
				missing = append(missing, key)
			}
		}
		sort.Strings(missing)

		if len(missing) > 0 {
			return timed(start, StatusDegraded, fmt.Sprintf("Missing required configuration: %v", missing))
		}
		return timed(start, StatusHealthy, "All required configuration present")
	}
}
