package solsmith

import "github.com/rs/zerolog"

// absProgramGenerator is the minimal surface a Synthesizer drives.
type absProgramGenerator interface {
	initialize()
	reseed(seed uint64)
	goGenerator() string
	programState() *ProgramState
	logger() zerolog.Logger
}

func createProgramGenerator(opts Options) absProgramGenerator {
	return newDefaultProgramGenerator(opts)
}

func (g *defaultProgramGenerator) logger() zerolog.Logger {
	return g.opts.Logger
}
