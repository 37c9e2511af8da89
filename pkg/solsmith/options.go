package solsmith

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/OpenDotSo/solidity/pkg/render"
)

// Options is the configuration contract for one synthesis pass.
// Defaults mirror the limits of the ossfuzz Solidity program generator.
type Options struct {
	Seed uint64 `yaml:"seed"`

	// Program shape
	MaxSourceUnits      int  `yaml:"maxSourceUnits"`
	MaxElementsPerUnit  int  `yaml:"maxElementsPerUnit"`
	MaxImportsPerUnit   int  `yaml:"maxImportsPerUnit"`
	MaxContractsPerUnit int  `yaml:"maxContractsPerUnit"`
	MaxFunctions        int  `yaml:"maxFunctions"`
	MaxStateVariables   int  `yaml:"maxStateVariables"`
	MaxEvents           int  `yaml:"maxEvents"`
	Events              bool `yaml:"events"`

	// Recursion bounds
	MaxExpressionDepth int `yaml:"maxExpressionDepth"`
	MaxNatSpecDepth    int `yaml:"maxNatSpecDepth"`
	MaxBlockDepth      int `yaml:"maxBlockDepth"`
	MaxBlockStatements int `yaml:"maxBlockStatements"`
	MaxArrayDimensions int `yaml:"maxArrayDimensions"`

	// Literal and list sizes
	MaxStaticArraySize     int `yaml:"maxStaticArraySize"`
	MaxStringLength        int `yaml:"maxStringLength"`
	MaxHexLiteralLength    int `yaml:"maxHexLiteralLength"`
	MaxNumberLength        int `yaml:"maxNumberLength"`
	MaxTupleElements       int `yaml:"maxTupleElements"`
	MaxInlineArrayElements int `yaml:"maxInlineArrayElements"`
	MaxParameters          int `yaml:"maxParameters"`
	MaxEnumMembers         int `yaml:"maxEnumMembers"`
	MaxNatSpecTextLength   int `yaml:"maxNatSpecTextLength"`

	// Inverse probabilities
	AbstractInvProb    int `yaml:"abstractInvProb"`
	InheritanceInvProb int `yaml:"inheritanceInvProb"`
	SelfImportInvProb  int `yaml:"selfImportInvProb"`

	// DisabledExpressions removes expression kinds by name, e.g. "new".
	// Leaf kinds cannot be disabled.
	DisabledExpressions []string `yaml:"disabledExpressions"`

	TraceRNG bool `yaml:"traceRNG"`

	Logger   zerolog.Logger  `yaml:"-"`
	Renderer render.Renderer `yaml:"-"`
}

func Defaults() Options {
	return Options{
		Seed: 0,

		MaxSourceUnits:      3,
		MaxElementsPerUnit:  10,
		MaxImportsPerUnit:   2,
		MaxContractsPerUnit: 2,
		MaxFunctions:        4,
		MaxStateVariables:   3,
		MaxEvents:           2,
		Events:              false,

		MaxExpressionDepth: 5,
		MaxNatSpecDepth:    3,
		MaxBlockDepth:      2,
		MaxBlockStatements: 4,
		MaxArrayDimensions: 3,

		MaxStaticArraySize:     5,
		MaxStringLength:        10,
		MaxHexLiteralLength:    64,
		MaxNumberLength:        8,
		MaxTupleElements:       4,
		MaxInlineArrayElements: 4,
		MaxParameters:          3,
		MaxEnumMembers:         5,
		MaxNatSpecTextLength:   8,

		AbstractInvProb:    10,
		InheritanceInvProb: 10,
		SelfImportInvProb:  101,

		TraceRNG: false,

		Logger:   zerolog.Nop(),
		Renderer: render.Whiskers{},
	}
}

// LoadOptions reads a YAML options file on top of Defaults.
func LoadOptions(path string) (Options, error) {
	opts := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read options: %w", err)
	}
	return ParseOptions(data)
}

// ParseOptions decodes YAML options on top of Defaults. Unknown keys are
// rejected.
func ParseOptions(data []byte) (Options, error) {
	opts := Defaults()
	if len(bytes.TrimSpace(data)) == 0 {
		return opts, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.DisallowUnknownField())
	if err := dec.Decode(&opts); err != nil {
		return opts, fmt.Errorf("failed to parse options: %w", err)
	}
	return opts, nil
}

// YAML encodes the options in the format accepted by ParseOptions.
func (o Options) YAML() ([]byte, error) {
	return yaml.Marshal(o)
}

func (o Options) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"maxSourceUnits", o.MaxSourceUnits},
		{"maxElementsPerUnit", o.MaxElementsPerUnit},
		{"maxContractsPerUnit", o.MaxContractsPerUnit},
		{"maxFunctions", o.MaxFunctions},
		{"maxStateVariables", o.MaxStateVariables},
		{"maxExpressionDepth", o.MaxExpressionDepth},
		{"maxNatSpecDepth", o.MaxNatSpecDepth},
		{"maxBlockDepth", o.MaxBlockDepth},
		{"maxBlockStatements", o.MaxBlockStatements},
		{"maxArrayDimensions", o.MaxArrayDimensions},
		{"maxStaticArraySize", o.MaxStaticArraySize},
		{"maxStringLength", o.MaxStringLength},
		{"maxHexLiteralLength", o.MaxHexLiteralLength},
		{"maxNumberLength", o.MaxNumberLength},
		{"maxTupleElements", o.MaxTupleElements},
		{"maxInlineArrayElements", o.MaxInlineArrayElements},
		{"maxParameters", o.MaxParameters},
		{"maxEnumMembers", o.MaxEnumMembers},
		{"maxNatSpecTextLength", o.MaxNatSpecTextLength},
		{"abstractInvProb", o.AbstractInvProb},
		{"inheritanceInvProb", o.InheritanceInvProb},
		{"selfImportInvProb", o.SelfImportInvProb},
	}
	for _, p := range positive {
		if p.value < 1 {
			return fmt.Errorf("%s must be at least 1", p.name)
		}
	}
	if o.MaxImportsPerUnit < 0 {
		return fmt.Errorf("maxImportsPerUnit must not be negative")
	}
	if o.Events && o.MaxEvents < 1 {
		return fmt.Errorf("maxEvents must be at least 1 when events are enabled")
	}
	if o.MaxSourceUnits > 64 {
		return fmt.Errorf("maxSourceUnits cannot exceed 64")
	}
	if o.MaxArrayDimensions > 3 {
		return fmt.Errorf("maxArrayDimensions cannot exceed 3")
	}
	if o.MaxHexLiteralLength%2 != 0 {
		return fmt.Errorf("maxHexLiteralLength must be even")
	}
	for _, name := range o.DisabledExpressions {
		kind, err := ParseExpressionKind(name)
		if err != nil {
			return err
		}
		if kind.isLeaf() {
			return fmt.Errorf("expression kind %q is a leaf and cannot be disabled", name)
		}
	}
	return nil
}

func (o Options) normalize() Options {
	if o.Renderer == nil {
		o.Renderer = render.Whiskers{}
	}
	if !o.Events {
		o.MaxEvents = 0
	}
	return o
}

// ParseExpressionKind resolves a configured expression kind name. Unknown
// names get the closest known name as a suggestion.
func ParseExpressionKind(name string) (ExpressionKind, error) {
	for k := ExpressionKind(0); k < expressionKindCount; k++ {
		if k.String() == name {
			return k, nil
		}
	}
	if suggestion := closestExpressionKindName(name); suggestion != "" {
		return 0, fmt.Errorf("unknown expression kind %q, did you mean %q?", name, suggestion)
	}
	return 0, fmt.Errorf("unknown expression kind %q", name)
}

func closestExpressionKindName(name string) (closest string) {
	nameRunes := []rune(name)
	closestDistance := len(name)

	names := make([]string, 0, expressionKindCount)
	for k := ExpressionKind(0); k < expressionKindCount; k++ {
		names = append(names, k.String())
	}
	sort.Strings(names)

	for _, candidate := range names {
		distance := levenshtein.DistanceForStrings(
			nameRunes,
			[]rune(candidate),
			levenshtein.DefaultOptions,
		)
		if distance < closestDistance && distance < len(candidate) {
			closest = candidate
			closestDistance = distance
		}
	}
	return
}
