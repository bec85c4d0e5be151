package intake

import (
	"context"

	"starz-engine/internal/domain"
)

type Result struct {
	Source string
	Leads  []domain.Lead
	// Finalize runs after the leads are processed (e.g. mark emails seen).
	Finalize func(context.Context) error
}

type Status struct {
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastAdded int    `json:"last_added"`
	Running   bool   `json:"running"`
}

type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (Result, error)
}
