// Package pipeline drives the strictly phased analysis: ingest every
// source into one explicitly owned model, infer subnets, classify roles,
// project the topology graph, and emit all artifacts. No phase starts
// before the previous one fully completes, and no aggregation state is
// shared across runs.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"netspawn/internal/classify"
	"netspawn/internal/codec"
	"netspawn/internal/config"
	"netspawn/internal/generate"
	"netspawn/internal/graph"
	"netspawn/internal/ingest"
	"netspawn/internal/model"
	"netspawn/internal/repository"
	"netspawn/internal/subnet"
)

// Phase names reported on failure.
const (
	PhaseIngest   = "ingest"
	PhaseSubnets  = "subnet-inference"
	PhaseClassify = "classification"
	PhaseGraph    = "graph"
	PhaseEmit     = "emit"
)

// PhaseError labels a failure with the pipeline phase it happened in.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s phase: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Pipeline runs one analysis end to end.
type Pipeline struct {
	cfg      *config.Config
	log      *logrus.Logger
	registry *ingest.Registry
	repo     repository.Repository // optional run history
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithRepository records completed runs in the given store.
func WithRepository(repo repository.Repository) Option {
	return func(p *Pipeline) { p.repo = repo }
}

// WithRegistry replaces the default parser registry.
func WithRegistry(reg *ingest.Registry) Option {
	return func(p *Pipeline) { p.registry = reg }
}

// New creates a pipeline. cfg and log must not be nil.
func New(cfg *config.Config, log *logrus.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		log:      log,
		registry: ingest.NewRegistry(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result describes a completed run and where its artifacts landed.
type Result struct {
	RunID       string
	Model       *model.Model
	SubnetPlan  *subnet.Plan
	Graph       *graph.Graph
	Summary     *codec.Summary
	GraphPath   string
	SummaryPath string
	InfraDir    string
}

// Run executes the full pipeline over the given sources, writing all
// artifacts under outDir. graphFormat selects the graph artifact
// encoding (json or yaml). A successful run produces the graph, the
// summary, and the infrastructure definitions together; any failure
// produces a phase-labeled error and no trusted artifact set.
func (p *Pipeline) Run(ctx context.Context, sources []string, outDir, graphFormat string) (*Result, error) {
	runID := uuid.NewString()
	log := p.log.WithFields(logrus.Fields{"run": runID})
	started := time.Now()

	m := model.New()

	// Phase 1: ingest. Each source is staged and merged only on full
	// success; any source failure fails the run.
	for _, source := range sources {
		format, err := ingest.IngestFile(p.registry, source, m)
		if err != nil {
			return nil, &PhaseError{Phase: PhaseIngest, Err: err}
		}
		log.WithFields(logrus.Fields{"source": source, "format": format}).Info("source ingested")
	}
	log.WithFields(logrus.Fields{
		"hosts":       m.HostCount(),
		"connections": len(m.Connections()),
	}).Info("ingestion complete")

	// Phase 2: subnet inference.
	plan, err := subnet.Infer(m.Addrs(), p.cfg.SubnetConfigValue())
	if err != nil {
		return nil, &PhaseError{Phase: PhaseSubnets, Err: err}
	}
	for _, addr := range plan.Skipped {
		log.WithFields(logrus.Fields{"addr": addr}).Warn("address not parseable, no subnet assigned")
	}
	for _, addr := range m.Addrs() {
		m.Host(addr).Subnet = plan.Subnet(addr)
	}

	// Phase 3: role classification over the complete host set.
	classifier := classify.New(p.cfg.ClassifierParams(), p.cfg.Services)
	roles := classifier.Classify(m)
	for role, count := range classify.RoleCounts(roles) {
		log.WithFields(logrus.Fields{"role": role, "count": count}).Debug("roles assigned")
	}

	// Phase 4: topology graph projection.
	g := graph.Build(m, p.cfg.Styles)

	// Phase 5: artifact emission, all kinds together.
	result := &Result{
		RunID:      runID,
		Model:      m,
		SubnetPlan: plan,
		Graph:      g,
		Summary:    codec.BuildSummary(m, plan),
	}
	if err := p.emit(result, outDir, graphFormat); err != nil {
		return nil, &PhaseError{Phase: PhaseEmit, Err: err}
	}

	if p.repo != nil {
		record := &repository.RunRecord{
			ID:              runID,
			CreatedAt:       started.UTC(),
			Sources:         sources,
			HostCount:       m.HostCount(),
			ConnectionCount: len(m.Connections()),
			SubnetCount:     len(plan.Order),
			Roles:           roleStrings(roles),
			ArtifactDir:     outDir,
		}
		if err := p.repo.SaveRun(ctx, record); err != nil {
			// History is best-effort; the artifacts already exist.
			log.WithError(err).Warn("failed to record run history")
		}
	}

	log.WithFields(logrus.Fields{"elapsed": time.Since(started).Round(time.Millisecond)}).Info("run complete")
	return result, nil
}

// emit writes the three artifact kinds. The infrastructure plan is
// computed first, so an empty model aborts before any file exists.
func (p *Pipeline) emit(result *Result, outDir, graphFormat string) error {
	exporter, ok := codec.ForFormat(graphFormat)
	if !ok {
		return fmt.Errorf("unsupported graph format %q", graphFormat)
	}

	infraPlan, err := generate.Build(result.Model, result.Graph, generate.Options{
		Provider:    p.cfg.Generator.Provider,
		Project:     p.cfg.Generator.Project,
		Region:      p.cfg.Generator.Region,
		Zone:        p.cfg.Generator.Zone,
		NetworkName: p.cfg.Generator.NetworkName,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	result.GraphPath = filepath.Join(outDir, "topology."+exporter.Format())
	f, err := os.Create(result.GraphPath)
	if err != nil {
		return fmt.Errorf("create graph artifact: %w", err)
	}
	if err := exporter.Export(result.Graph, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	result.SummaryPath = filepath.Join(outDir, "summary.yaml")
	sf, err := os.Create(result.SummaryPath)
	if err != nil {
		return fmt.Errorf("create summary artifact: %w", err)
	}
	if err := codec.WriteSummary(result.Summary, sf); err != nil {
		sf.Close()
		return err
	}
	if err := sf.Close(); err != nil {
		return err
	}

	result.InfraDir = filepath.Join(outDir, "terraform")
	return generate.Emit(infraPlan, result.InfraDir)
}

func roleStrings(roles map[string]model.Role) map[string]int {
	out := make(map[string]int)
	for _, role := range roles {
		out[string(role)]++
	}
	return out
}
