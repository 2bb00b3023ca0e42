package analysis

import (
	"modelbench/domain/view"
	"modelbench/internal"
	"modelbench/ports"
)

// Renderer applies analysis views to a surface
type Renderer struct {
	builder     Builder
	surface     ports.AnalysisSurface
	generations *SequenceManager
	logger      *internal.Logger
}

// NewRenderer creates a renderer. A nil surface makes Render log and no-op.
func NewRenderer(surface ports.AnalysisSurface, logger *internal.Logger) *Renderer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Renderer{
		builder:     NewBuilder(),
		surface:     surface,
		generations: NewSequenceManager(),
		logger:      logger.With("analysis"),
	}
}

// Render recomputes the analysis from the full dataset and shows it. The
// distribution is left untouched when no target is selected.
func (r *Renderer) Render(in Input) view.Analysis {
	gen := r.generations.Next()
	result := r.builder.Build(in)

	if r.surface == nil {
		r.logger.Warn("analysis surface missing, skipping render")
		return result
	}
	if !r.generations.IsLatest(gen) {
		r.logger.Debug("dropping stale analysis render %d", gen)
		return result
	}

	r.surface.ShowSummary(result.Summary)
	if result.Distribution != nil {
		r.surface.ShowDistribution(*result.Distribution)
	}
	r.logger.Debug("rendered analysis: shape %s, target %q", result.Summary.Shape(), in.Target)
	return result
}
