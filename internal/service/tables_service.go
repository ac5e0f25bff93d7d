package service

import (
	"context"
	"fmt"
	"ssipfix/internal/repository"
)

type PingFunc func(ctx context.Context) error

type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	Tables     int               `json:"tables"`
}

type TablesService interface {
	Health(ctx context.Context) (*HealthStatus, error)
}

type tablesService struct {
	tablesRepo repository.TablesRepository
	pings      map[string]PingFunc
}

func NewTablesService(tablesRepo repository.TablesRepository, pings map[string]PingFunc) TablesService {
	return &tablesService{tablesRepo: tablesRepo, pings: pings}
}

// Health pings every backing store and counts schema tables. Status is "degraded" when any check fails.
func (t *tablesService) Health(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{Status: "ok", Components: make(map[string]string, len(t.pings))}
	var firstErr error

	for name, ping := range t.pings {
		if err := ping(ctx); err != nil {
			status.Components[name] = "down"
			status.Status = "degraded"
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", name, err)
			}
			continue
		}
		status.Components[name] = "ok"
	}

	countTables, err := t.tablesRepo.CountTablesDB(ctx)
	if err != nil {
		status.Status = "degraded"
		if firstErr == nil {
			firstErr = err
		}
	}
	status.Tables = countTables

	return status, firstErr
}
