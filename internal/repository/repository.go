// Package repository defines persistence for analysis run history, so
// repeated analyses of the same environment stay comparable over time.
package repository

import (
	"context"
	"time"
)

// RunRecord summarizes one completed analysis run.
type RunRecord struct {
	ID              string         `json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	Sources         []string       `json:"sources"`
	HostCount       int            `json:"host_count"`
	ConnectionCount int            `json:"connection_count"`
	SubnetCount     int            `json:"subnet_count"`
	Roles           map[string]int `json:"roles"`
	ArtifactDir     string         `json:"artifact_dir"`
}

// Repository is the run-history store.
type Repository interface {
	SaveRun(ctx context.Context, run *RunRecord) error
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]*RunRecord, error)
	Close() error
}
