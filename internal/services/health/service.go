package health

import (
	"context"
	"database/sql"
	"time"

	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/telemetry"
)

const defaultPingTimeout = 2 * time.Second

// UserCounter reports the number of stored users.
type UserCounter interface {
	Count(ctx context.Context) (int, error)
}

// Report is the /health payload.
type Report struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Users    *int   `json:"users,omitempty"`
}

// Up reports whether the service is healthy.
func (r Report) Up() bool { return r.Status == "UP" }

// Service encapsulates health-related checks.
type Service struct {
	DB          *sql.DB
	Users       UserCounter
	PingTimeout time.Duration
}

// NewService constructs a new health service. A nil database means the
// in-memory repositories are in use.
func NewService(database *sql.DB, users UserCounter) *Service {
	return &Service{DB: database, Users: users, PingTimeout: defaultPingTimeout}
}

// Status pings the database and counts users.
func (s *Service) Status(ctx context.Context) Report {
	if s.DB == nil {
		return Report{Status: "UP", Database: "memory"}
	}
	if err := db.Ping(ctx, s.DB, s.PingTimeout); err != nil {
		telemetry.Error("health.db_ping_failed", map[string]any{"error": err})
		return Report{Status: "DOWN", Database: "disconnected"}
	}
	report := Report{Status: "UP", Database: "connected"}
	if s.Users != nil {
		n, err := s.Users.Count(ctx)
		if err != nil {
			telemetry.Error("health.count_failed", map[string]any{"error": err})
			return Report{Status: "DOWN", Database: "error"}
		}
		report.Users = &n
	}
	return report
}
