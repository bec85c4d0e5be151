package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"starz-engine/internal/config"
	"starz-engine/internal/events"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	// Atomic stores
	CfgVal       *atomic.Value // stores config.Config
	IntakeStatus *atomic.Value // stores intake.Status

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	DeleteLead func(ctx context.Context, db *sql.DB, id int64) error

	// Intake entrypoint (inject for testability)
	RunIntake func(db *sql.DB, cfg config.Config, onNewLead func(id int64, company string)) (added int, err error)
}
