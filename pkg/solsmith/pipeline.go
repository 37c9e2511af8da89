package solsmith

import (
	"fmt"
	"strings"
)

// defaultProgramGenerator runs the assembly flow:
// initialize -> outputHeader -> generateSourceUnits.
type defaultProgramGenerator struct {
	opts  Options
	r     *rng
	graph *Graph
	b     strings.Builder
}

func newDefaultProgramGenerator(opts Options) *defaultProgramGenerator {
	return &defaultProgramGenerator{opts: opts}
}

func (g *defaultProgramGenerator) initialize() {
	g.r = newRNG(g.opts.Seed, g.opts.Logger, g.opts.TraceRNG)
	g.graph = newGraph(g.opts, g.r)
}

// reseed prepares the generator for another program without rebuilding the
// graph.
func (g *defaultProgramGenerator) reseed(seed uint64) {
	g.opts.Seed = seed
	g.r.seed(seed)
	g.b.Reset()
}

func (g *defaultProgramGenerator) outputHeader() {
	g.b.WriteString("// This is a RANDOMLY GENERATED PROGRAM.\n")
	g.b.WriteString("//\n")
	g.b.WriteString("// Generator: solsmith\n")
	g.b.WriteString("// Options:   --seed ")
	g.b.WriteString(fmt.Sprintf("%d", g.opts.Seed))
	g.b.WriteString("\n")
	g.b.WriteString("// Seed:      ")
	g.b.WriteString(fmt.Sprintf("%d", g.opts.Seed))
	g.b.WriteString("\n")
}

func (g *defaultProgramGenerator) generateSourceUnits() {
	g.graph.beginProgram()
	g.b.WriteString(g.graph.Visit(KindTestCase))
}

func (g *defaultProgramGenerator) goGenerator() string {
	g.outputHeader()
	g.generateSourceUnits()
	return g.b.String()
}

func (g *defaultProgramGenerator) programState() *ProgramState {
	return g.graph.State()
}

// Program is one synthesized multi-file program.
type Program struct {
	Seed  uint64
	Text  string
	State *ProgramState
}

// Synthesizer owns one generator graph and synthesizes programs for many
// seeds in turn. It is not safe for concurrent use; parallel callers need
// one Synthesizer each.
type Synthesizer struct {
	gen absProgramGenerator
}

func NewSynthesizer(opts Options) (*Synthesizer, error) {
	opts = opts.normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	gen := createProgramGenerator(opts)
	gen.initialize()
	return &Synthesizer{gen: gen}, nil
}

// Synthesize generates the program of seed. The same seed always yields the
// same text.
func (s *Synthesizer) Synthesize(seed uint64) *Program {
	s.gen.reseed(seed)
	text := s.gen.goGenerator()
	state := s.gen.programState()
	log := s.gen.logger()
	log.Debug().
		Uint64("seed", seed).
		Int("units", state.Len()).
		Int("bytes", len(text)).
		Msg("synthesized program")
	return &Program{Seed: seed, Text: text, State: state}
}

// Generate synthesizes the program selected by opts.Seed.
func Generate(opts Options) (string, error) {
	s, err := NewSynthesizer(opts)
	if err != nil {
		return "", err
	}
	return s.Synthesize(opts.Seed).Text, nil
}
