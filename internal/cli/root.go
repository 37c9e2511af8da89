package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenDotSo/solidity/pkg/solsmith"
)

const (
	appName    = "solsmith"
	appVersion = "0.1.0"
)

type negBoolBinding struct {
	target *bool
	neg    *bool
}

func addBoolPair(cmd *cobra.Command, bindings *[]negBoolBinding, target *bool, name string, usage string) {
	neg := new(bool)
	cmd.Flags().BoolVar(target, name, *target, usage)
	cmd.Flags().BoolVar(neg, "no-"+name, false, "disable "+name)
	*bindings = append(*bindings, negBoolBinding{target: target, neg: neg})
}

// optionFlags holds flag values until they are layered over the options
// loaded from --config. Only flags set on the command line win.
type optionFlags struct {
	values      solsmith.Options
	ints        map[string]func(*solsmith.Options) *int
	negBindings []negBoolBinding
}

func newOptionFlags() *optionFlags {
	return &optionFlags{
		values: solsmith.Defaults(),
		ints:   map[string]func(*solsmith.Options) *int{},
	}
}

func (f *optionFlags) intFlag(cmd *cobra.Command, name string, field func(*solsmith.Options) *int, usage string) {
	f.ints[name] = field
	target := field(&f.values)
	cmd.Flags().IntVar(target, name, *target, usage)
}

func (f *optionFlags) register(cmd *cobra.Command) {
	f.intFlag(cmd, "max-source-units", func(o *solsmith.Options) *int { return &o.MaxSourceUnits }, "limit source units per program")
	f.intFlag(cmd, "max-elements-per-unit", func(o *solsmith.Options) *int { return &o.MaxElementsPerUnit }, "limit free elements per source unit")
	f.intFlag(cmd, "max-imports-per-unit", func(o *solsmith.Options) *int { return &o.MaxImportsPerUnit }, "limit imports per source unit")
	f.intFlag(cmd, "max-contracts-per-unit", func(o *solsmith.Options) *int { return &o.MaxContractsPerUnit }, "limit contracts per source unit")
	f.intFlag(cmd, "max-functions", func(o *solsmith.Options) *int { return &o.MaxFunctions }, "limit functions per contract")
	f.intFlag(cmd, "max-state-variables", func(o *solsmith.Options) *int { return &o.MaxStateVariables }, "limit state variables per contract")
	f.intFlag(cmd, "max-events", func(o *solsmith.Options) *int { return &o.MaxEvents }, "limit events per contract")
	f.intFlag(cmd, "max-expression-depth", func(o *solsmith.Options) *int { return &o.MaxExpressionDepth }, "limit recursive expression productions")
	f.intFlag(cmd, "max-natspec-depth", func(o *solsmith.Options) *int { return &o.MaxNatSpecDepth }, "limit lines per documentation block")
	f.intFlag(cmd, "max-block-depth", func(o *solsmith.Options) *int { return &o.MaxBlockDepth }, "limit depth of nested blocks")
	f.intFlag(cmd, "max-block-statements", func(o *solsmith.Options) *int { return &o.MaxBlockStatements }, "limit statements per block")
	f.intFlag(cmd, "max-array-dimensions", func(o *solsmith.Options) *int { return &o.MaxArrayDimensions }, "limit array dimensions")
	f.intFlag(cmd, "max-parameters", func(o *solsmith.Options) *int { return &o.MaxParameters }, "limit function parameters")
	f.intFlag(cmd, "abstract-inv-prob", func(o *solsmith.Options) *int { return &o.AbstractInvProb }, "a contract is abstract with probability 1/N")
	f.intFlag(cmd, "inheritance-inv-prob", func(o *solsmith.Options) *int { return &o.InheritanceInvProb }, "a contract inherits with probability 1/N")
	f.intFlag(cmd, "self-import-inv-prob", func(o *solsmith.Options) *int { return &o.SelfImportInvProb }, "an import targets its own unit with probability 1/N")

	addBoolPair(cmd, &f.negBindings, &f.values.Events, "events", "declare events in contracts")
	cmd.Flags().BoolVar(&f.values.TraceRNG, "trace-rng", f.values.TraceRNG, "log every random draw at trace level")
	cmd.Flags().StringSliceVar(&f.values.DisabledExpressions, "disable-expression", nil, "expression kind to never generate (repeatable)")
}

// resolve loads configPath, if any, and applies the flags that were set.
func (f *optionFlags) resolve(cmd *cobra.Command, configPath string) (solsmith.Options, error) {
	opts := solsmith.Defaults()
	if configPath != "" {
		var err error
		opts, err = solsmith.LoadOptions(configPath)
		if err != nil {
			return opts, err
		}
	}

	for _, b := range f.negBindings {
		if *b.neg {
			*b.target = false
		}
	}

	flags := cmd.Flags()
	for name, field := range f.ints {
		if flags.Changed(name) {
			*field(&opts) = *field(&f.values)
		}
	}
	if flags.Changed("events") || flags.Changed("no-events") {
		opts.Events = f.values.Events
	}
	if flags.Changed("trace-rng") {
		opts.TraceRNG = f.values.TraceRNG
	}
	if flags.Changed("disable-expression") {
		opts.DisabledExpressions = f.values.DisabledExpressions
	}
	return opts, nil
}

func NewRootCmd() *cobra.Command {
	flags := newOptionFlags()
	seed := uint64(0)
	seedSet := false
	outputPath := ""
	configPath := ""
	logLevel := "warn"
	showVersion := false
	dumpConfig := false
	dumpState := false

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Random multi-file Solidity program generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected arguments: %v", args)
			}

			if showVersion {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, appVersion)
				return err
			}

			opts, err := flags.resolve(cmd, configPath)
			if err != nil {
				return err
			}
			opts.Logger, err = newLogger(cmd.ErrOrStderr(), logLevel)
			if err != nil {
				return err
			}
			if seedSet {
				opts.Seed = seed
			} else if configPath == "" {
				opts.Seed = uint64(time.Now().UnixNano())
			}

			if dumpConfig {
				data, err := opts.YAML()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			synthesizer, err := solsmith.NewSynthesizer(opts)
			if err != nil {
				return err
			}
			program := synthesizer.Synthesize(opts.Seed)

			if dumpState {
				if err := program.State.Dump(cmd.ErrOrStderr(), false); err != nil {
					return err
				}
			}
			return writeProgram(cmd.OutOrStdout(), outputPath, program.Text)
		},
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.Flags().BoolVarP(&showVersion, "version", "v", false, "print version")
	cmd.Flags().Uint64VarP(&seed, "seed", "s", 0, "seed for deterministic generation")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the generated program to file")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML options file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "log level (trace, debug, info, warn, error)")
	cmd.Flags().BoolVar(&dumpConfig, "dump-config", false, "print the effective options as YAML and exit")
	cmd.Flags().BoolVar(&dumpState, "dump-state", false, "print the program state ledger to stderr")
	flags.register(cmd)

	_ = cmd.MarkFlagFilename("output", "sol")
	_ = cmd.MarkPersistentFlagFilename("config", "yaml", "yml")

	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		seedSet = cmd.Flags().Changed("seed")
	}

	cmd.AddCommand(newBatchCmd())

	return cmd
}

func writeProgram(stdout io.Writer, outputPath string, program string) error {
	if outputPath == "" {
		_, err := fmt.Fprint(stdout, program)
		return err
	}
	return os.WriteFile(outputPath, []byte(program), 0o644)
}

// Execute runs the root command and reports a failure on stderr.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), colorizeError("error: "+err.Error()))
		return 1
	}
	return 0
}
