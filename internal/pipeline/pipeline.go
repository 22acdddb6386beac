package pipeline

import (
	"github.com/ppiankov/factlens/internal/group"
	"github.com/ppiankov/factlens/internal/logger"
	"github.com/ppiankov/factlens/internal/metrics"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/normalize"
	"github.com/ppiankov/factlens/internal/render"
)

// Pipeline turns one response envelope into render nodes.
// It is synchronous and holds no per-request state.
type Pipeline struct {
	log     logger.Logger
	metrics *metrics.Metrics
}

// NewPipeline creates a pipeline. A nil metrics value disables metrics.
func NewPipeline(log logger.Logger, m *metrics.Metrics) *Pipeline {
	if log == nil {
		log = logger.NewNop()
	}
	return &Pipeline{log: log, metrics: m}
}

// Result contains every stage's output for one envelope
type Result struct {
	Claims  []model.NormalizedClaim
	Grouped group.Grouped
	Nodes   []render.Node
}

// Process normalizes, groups and builds one envelope.
// It never fails: malformed claims degrade to defaults.
func (p *Pipeline) Process(env model.ResponseEnvelope) *Result {
	// 1. Normalize every claim record
	claims := normalize.NormalizeAll(env.Claims)

	recovered := 0
	for _, c := range claims {
		p.metrics.ClaimNormalized(string(c.VerdictCategory), string(c.Recovery))
		switch c.Recovery {
		case model.RecoveryStructured, model.RecoveryTextual:
			recovered++
		case model.RecoveryInvalid:
			p.log.Warn("claim record without result", logger.String("claim", c.ClaimText))
		}
	}

	// 2. Group by origin
	grouped := group.Group(claims)

	// 3. Build render nodes
	nodes := render.Build(env, grouped)

	p.log.Debug("response processed",
		logger.Int("claims", len(claims)),
		logger.Int("text_claims", len(grouped.Text)),
		logger.Int("image_groups", len(grouped.Images)),
		logger.Int("recovered_explanations", recovered),
		logger.Int("nodes", len(nodes)),
	)

	return &Result{
		Claims:  claims,
		Grouped: grouped,
		Nodes:   nodes,
	}
}

// Render processes env and hands the nodes to sink
func (p *Pipeline) Render(env model.ResponseEnvelope, sink render.Sink) (*Result, error) {
	result := p.Process(env)
	if err := sink.Render(result.Nodes); err != nil {
		return result, err
	}
	return result, nil
}
