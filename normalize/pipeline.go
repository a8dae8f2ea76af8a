package normalize

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cssnorm/css"
)

// Pass is a single normalization pass over a stylesheet.
type Pass interface {
	Name() string
	Apply(sheet *css.Stylesheet) Stats
}

// Pass names accepted by NewPass.
const (
	PassExplode  = "explode"
	PassDefaults = "defaults"
	PassUnits    = "units"
)

// PassNames lists known passes in their natural order.
var PassNames = []string{PassExplode, PassDefaults, PassUnits}

// NewPass creates pass by name.
func NewPass(name string, opts Options, log *zap.Logger) (Pass, error) {
	switch strings.ToLower(name) {
	case PassExplode:
		return NewExplode(opts, log), nil
	case PassDefaults:
		return NewDefaulter(opts, log), nil
	case PassUnits:
		return NewUnitInjector(opts, log), nil
	}
	return nil, fmt.Errorf("unknown normalization pass %q", name)
}

// PassStats are statistics of a single pass of a pipeline run.
type PassStats struct {
	Name string
	Stats
}

// Pipeline runs passes in sequence over the same stylesheet, output of a
// pass is the input of the next one.
type Pipeline struct {
	passes []Pass
	log    *zap.Logger
}

// NewPipeline creates pipeline from passes.
func NewPipeline(log *zap.Logger, passes ...Pass) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{passes: passes, log: log.Named("pipeline")}
}

// Passes returns names of pipeline passes in order.
func (p *Pipeline) Passes() []string {
	names := make([]string, 0, len(p.passes))
	for _, pass := range p.passes {
		names = append(names, pass.Name())
	}
	return names
}

// Run applies all passes to the stylesheet in place.
func (p *Pipeline) Run(sheet *css.Stylesheet) []PassStats {
	out := make([]PassStats, 0, len(p.passes))
	for _, pass := range p.passes {
		stats := pass.Apply(sheet)
		p.log.Debug("Pass completed",
			zap.String("pass", pass.Name()),
			zap.Int("visited", stats.Visited),
			zap.Int("transformed", stats.Transformed),
			zap.Int("produced", stats.Produced))
		out = append(out, PassStats{Name: pass.Name(), Stats: stats})
	}
	return out
}
