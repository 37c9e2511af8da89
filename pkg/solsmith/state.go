package solsmith

import (
	"slices"
	"sort"
	"strconv"
)

// ExportedSymbols is the set of names one source unit makes visible to
// importers. Both sets are kept sorted so random picks are reproducible.
type ExportedSymbols struct {
	Symbols []string
	Types   []string
}

func insertSorted(set []string, name string) []string {
	i := sort.SearchStrings(set, name)
	if i < len(set) && set[i] == name {
		return set
	}
	set = append(set, "")
	copy(set[i+1:], set[i:])
	set[i] = name
	return set
}

func containsSorted(set []string, name string) bool {
	i := sort.SearchStrings(set, name)
	return i < len(set) && set[i] == name
}

// AddSymbol exports a plain symbol (function, constant, alias).
func (e *ExportedSymbols) AddSymbol(name string) {
	e.Symbols = insertSorted(e.Symbols, name)
}

// AddType exports a user-defined type name, which is also a symbol.
func (e *ExportedSymbols) AddType(name string) {
	e.Symbols = insertSorted(e.Symbols, name)
	e.Types = insertSorted(e.Types, name)
}

// Merge adds everything other exports. Duplicates are ignored.
func (e *ExportedSymbols) Merge(other ExportedSymbols) {
	for _, s := range other.Symbols {
		e.Symbols = insertSorted(e.Symbols, s)
	}
	for _, t := range other.Types {
		e.Types = insertSorted(e.Types, t)
	}
}

func (e *ExportedSymbols) HasSymbol(name string) bool {
	return containsSorted(e.Symbols, name)
}

func (e *ExportedSymbols) HasType(name string) bool {
	return containsSorted(e.Types, name)
}

func (e *ExportedSymbols) RandomSymbol(r *rng) (string, bool) {
	if len(e.Symbols) == 0 {
		return "", false
	}
	return pickOneOf(r, e.Symbols), true
}

func (e *ExportedSymbols) RandomType(r *rng) (string, bool) {
	if len(e.Types) == 0 {
		return "", false
	}
	return pickOneOf(r, e.Types), true
}

type Mutability int

const (
	MutabilityPure Mutability = iota
	MutabilityView
	MutabilityPayable
	MutabilityNonPayable
)

// Keyword returns the source keyword; nonpayable is implicit.
func (m Mutability) Keyword() string {
	switch m {
	case MutabilityPure:
		return "pure"
	case MutabilityView:
		return "view"
	case MutabilityPayable:
		return "payable"
	case MutabilityNonPayable:
		return ""
	}
	panic(NewUnreachableError())
}

func randomMutability(r *rng) Mutability {
	return Mutability(r.pickIndex(4))
}

// Free functions cannot be payable.
func randomFreeFunctionMutability(r *rng) Mutability {
	return pickOneOf(r, []Mutability{MutabilityPure, MutabilityView, MutabilityNonPayable})
}

type Visibility int

const (
	VisibilityExternal Visibility = iota
	VisibilityInternal
	VisibilityPublic
	VisibilityPrivate
)

func (v Visibility) Keyword() string {
	switch v {
	case VisibilityExternal:
		return "external"
	case VisibilityInternal:
		return "internal"
	case VisibilityPublic:
		return "public"
	case VisibilityPrivate:
		return "private"
	}
	panic(NewUnreachableError())
}

type Inheritance int

const (
	InheritanceVirtual Inheritance = iota
	InheritanceOverride
	InheritanceVirtualOverride
	InheritanceNone
)

func (i Inheritance) virtual() bool {
	return i == InheritanceVirtual || i == InheritanceVirtualOverride
}

func (i Inheritance) override() bool {
	return i == InheritanceOverride || i == InheritanceVirtualOverride
}

// Param is a (type, name) pair of a parameter or return list.
type Param struct {
	Type string
	Name string
}

type FunctionSignature struct {
	Name        string
	Mutability  Mutability
	Visibility  Visibility
	Inputs      []Param
	Outputs     []Param
	Inheritance Inheritance
}

// Equal compares all fields. It does not model override compatibility.
func (f *FunctionSignature) Equal(other *FunctionSignature) bool {
	return f.Name == other.Name &&
		f.Mutability == other.Mutability &&
		f.Visibility == other.Visibility &&
		f.Inheritance == other.Inheritance &&
		slices.Equal(f.Inputs, other.Inputs) &&
		slices.Equal(f.Outputs, other.Outputs)
}

// SymbolAlias renames one selectively imported symbol.
type SymbolAlias struct {
	Symbol string
	Alias  string
}

// ImportRelation records one import statement. Symbols is empty for
// whole-unit imports. At most one of UnitAlias and SymbolAliases is set.
type ImportRelation struct {
	Path          string
	Symbols       []string
	UnitAlias     string
	SymbolAliases []SymbolAlias
}

func (i ImportRelation) HasUnitAlias() bool {
	return i.UnitAlias != ""
}

func (i ImportRelation) HasSymbolAliases() bool {
	return len(i.SymbolAliases) > 0
}

type SourceUnitState struct {
	Path      string
	Exports   ExportedSymbols
	Functions []*FunctionSignature
	Imports   []ImportRelation
	// Contracts declared in this unit, in declaration order.
	Contracts []string
	// Constants declared at file level, usable in constant initializers.
	Constants []string
}

func (s *SourceUnitState) SignatureExists(sig *FunctionSignature) bool {
	for _, f := range s.Functions {
		if f.Equal(sig) {
			return true
		}
	}
	return false
}

// ProgramState is the cross-file ledger of one synthesized program.
type ProgramState struct {
	units   []*SourceUnitState
	byPath  map[string]int
	current int

	nextContractID int
	nextEventID    int
	nextConstantID int
}

func NewProgramState() *ProgramState {
	return &ProgramState{
		byPath:  map[string]int{},
		current: -1,
	}
}

// BeginSourceUnit creates a unit and makes it current. Earlier units are
// never current again.
func (p *ProgramState) BeginSourceUnit(path string) *SourceUnitState {
	_, exists := p.byPath[path]
	assertf(!exists, "source unit %q already exists", path)
	unit := &SourceUnitState{Path: path}
	p.byPath[path] = len(p.units)
	p.units = append(p.units, unit)
	p.current = len(p.units) - 1
	return unit
}

func (p *ProgramState) Empty() bool {
	return len(p.units) == 0
}

func (p *ProgramState) Len() int {
	return len(p.units)
}

func (p *ProgramState) Paths() []string {
	paths := make([]string, 0, len(p.units))
	for _, u := range p.units {
		paths = append(paths, u.Path)
	}
	return paths
}

func (p *ProgramState) Units() []*SourceUnitState {
	return p.units
}

func (p *ProgramState) Unit(path string) (*SourceUnitState, bool) {
	i, ok := p.byPath[path]
	if !ok {
		return nil, false
	}
	return p.units[i], true
}

func (p *ProgramState) requireUnit() {
	assertf(p.current >= 0, "no source unit has been created")
}

func (p *ProgramState) CurrentPath() string {
	p.requireUnit()
	return p.units[p.current].Path
}

func (p *ProgramState) CurrentUnit() *SourceUnitState {
	p.requireUnit()
	return p.units[p.current]
}

func (p *ProgramState) ExportSymbol(name string) {
	p.CurrentUnit().Exports.AddSymbol(name)
}

func (p *ProgramState) ExportType(name string) {
	p.CurrentUnit().Exports.AddType(name)
}

func (p *ProgramState) ExportSymbols(symbols ExportedSymbols) {
	p.CurrentUnit().Exports.Merge(symbols)
}

func (p *ProgramState) SignatureExists(sig *FunctionSignature) bool {
	return p.CurrentUnit().SignatureExists(sig)
}

// RegisterFunction appends sig to the current unit and exports its name,
// unless a structurally equal signature is already registered. The caller
// must pick another signature when it returns false.
func (p *ProgramState) RegisterFunction(sig *FunctionSignature) bool {
	unit := p.CurrentUnit()
	if unit.SignatureExists(sig) {
		return false
	}
	unit.Functions = append(unit.Functions, sig)
	unit.Exports.AddSymbol(sig.Name)
	return true
}

func (p *ProgramState) AddImport(imp ImportRelation) {
	unit := p.CurrentUnit()
	unit.Imports = append(unit.Imports, imp)
}

func (p *ProgramState) AddContract(name string) {
	unit := p.CurrentUnit()
	unit.Contracts = append(unit.Contracts, name)
	unit.Exports.AddType(name)
}

func (p *ProgramState) AddConstant(name string) {
	unit := p.CurrentUnit()
	unit.Constants = append(unit.Constants, name)
	unit.Exports.AddSymbol(name)
}

// RandomPath picks any existing unit, the current one included.
func (p *ProgramState) RandomPath(r *rng) string {
	p.requireUnit()
	return pickOneOf(r, p.units).Path
}

// RandomOtherPath picks a unit other than the current one, if any exists.
func (p *ProgramState) RandomOtherPath(r *rng) (string, bool) {
	p.requireUnit()
	if len(p.units) < 2 {
		return "", false
	}
	i := r.pickIndex(len(p.units) - 1)
	if i >= p.current {
		i++
	}
	return p.units[i].Path, true
}

func (p *ProgramState) newContractName() string {
	p.nextContractID++
	return "C" + strconv.Itoa(p.nextContractID-1)
}

func (p *ProgramState) newEventName() string {
	p.nextEventID++
	return "Ev" + strconv.Itoa(p.nextEventID-1)
}

func (p *ProgramState) newConstantName() string {
	p.nextConstantID++
	return "c" + strconv.Itoa(p.nextConstantID-1)
}
