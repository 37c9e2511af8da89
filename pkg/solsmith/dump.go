package solsmith

import (
	"io"

	"github.com/k0kubun/pp/v3"
)

type stateDump struct {
	Current string
	Units   []*SourceUnitState
}

// Dump pretty-prints the ledger of every source unit to w.
func (p *ProgramState) Dump(w io.Writer, color bool) error {
	printer := pp.New()
	printer.SetOutput(w)
	printer.SetColoringEnabled(color)
	printer.SetExportedOnly(true)

	dump := stateDump{Units: p.units}
	if p.current >= 0 {
		dump.Current = p.units[p.current].Path
	}
	_, err := printer.Println(dump)
	return err
}
