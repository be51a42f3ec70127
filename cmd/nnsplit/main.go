// Package main provides nnsplit, a diagnostic tool printing the case splits
// and annotation analysis of a network description.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nnverify/plsearch"
	"github.com/nnverify/plsearch/constraint"
	"github.com/nnverify/plsearch/logger"
	"github.com/nnverify/plsearch/nnet"
	"github.com/nnverify/plsearch/profile"
)

var rootCmd = &cobra.Command{
	Use:     "nnsplit",
	Short:   "Inspect the piecewise-linear case splits of a network",
	Long:    `nnsplit loads a network description (YAML or CBOR snapshot), decodes its activation annotations into case splits and checks that they describe functions of the neuron input.`,
	Version: plsearch.Version.String(),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetOutput(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: "15:04:05"})
		if verbose {
			logger.SetLevel(zerolog.DebugLevel)
		}
		if profilePath != "" {
			session = profile.Start(profile.WithPath(profilePath))
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if session != nil {
			session.Stop()
			session = nil
		}
	},
}

var splitsCmd = &cobra.Command{
	Use:   "splits <layer> <neuron>",
	Short: "Print the disjunction of an annotated neuron",
	Args:  cobra.ExactArgs(2),
	RunE:  runSplits,
}

var constraintsCmd = &cobra.Command{
	Use:   "constraints",
	Short: "Print the activation constraint of every hidden neuron",
	Args:  cobra.NoArgs,
	RunE:  runConstraints,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Check every activation annotation for gaps, overlaps and discontinuities",
	Args:  cobra.NoArgs,
	RunE:  runAnalyze,
}

var evalCmd = &cobra.Command{
	Use:   "eval <x0> [x1...]",
	Short: "Evaluate the network on normalized inputs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEval,
}

var convertCmd = &cobra.Command{
	Use:   "convert <out.cbor>",
	Short: "Write the network as a CBOR snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var (
	networkPath string
	profilePath string
	verbose     bool
	inputVar    uint32
	outputVar   uint32
	firstVar    uint32

	session *profile.Profile
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&networkPath, "network", "n", "", "Path to the network description (.yaml, .yml or .cbor)")
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "Write a pprof profile of constraint creation to this path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logs")
	_ = rootCmd.MarkPersistentFlagRequired("network")

	splitsCmd.Flags().Uint32Var(&inputVar, "input", 0, "Solver variable of the neuron input (b)")
	splitsCmd.Flags().Uint32Var(&outputVar, "output", 1, "Solver variable of the neuron output (f)")
	constraintsCmd.Flags().Uint32Var(&firstVar, "first-var", 0, "First solver variable assigned to hidden neurons")

	rootCmd.AddCommand(splitsCmd)
	rootCmd.AddCommand(constraintsCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(convertCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSplits(cmd *cobra.Command, args []string) error {
	n, err := loadNetwork(networkPath)
	if err != nil {
		return err
	}
	layer, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid layer %q: %w", args[0], err)
	}
	neuron, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid neuron %q: %w", args[1], err)
	}

	idx := nnet.NeuronIndex{Layer: layer, Neuron: neuron}
	d, err := nnet.NewCaseSplitBuilder(n).BuildActivationCaseSplits(idx, inputVar, outputVar)
	if err != nil {
		return err
	}
	r := constraint.NamedResolver{inputVar: "b", outputVar: "f"}
	for i, split := range d.CaseSplits() {
		fmt.Fprintf(cmd.OutOrStdout(), "%d: %s\n", i, split.String(r))
	}
	return nil
}

func runConstraints(cmd *cobra.Command, args []string) error {
	n, err := loadNetwork(networkPath)
	if err != nil {
		return err
	}
	pool := constraint.NewPool()
	bindings := n.Bindings(firstVar)
	cs, err := nnet.NewCaseSplitBuilder(n).BuildNetworkConstraints(pool, bindings)
	if err != nil {
		return err
	}
	for i, c := range cs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s #%d: %s\n", bindings[i].Neuron, c.ID(), c.String(nil))
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	n, err := loadNetwork(networkPath)
	if err != nil {
		return err
	}
	res := nnet.Analyze(n, nnet.DefaultAnalysisConfig())
	res.Print(cmd.OutOrStdout())
	return res.Err()
}

func runEval(cmd *cobra.Command, args []string) error {
	n, err := loadNetwork(networkPath)
	if err != nil {
		return err
	}
	inputs := make([]float64, len(args))
	for i, a := range args {
		if inputs[i], err = strconv.ParseFloat(a, 64); err != nil {
			return fmt.Errorf("invalid input %q: %w", a, err)
		}
	}
	out, err := n.Evaluate(inputs)
	if err != nil {
		return err
	}
	for i, v := range out {
		fmt.Fprintf(cmd.OutOrStdout(), "y%d = %s\n", i, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	n, err := loadNetwork(networkPath)
	if err != nil {
		return err
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if _, err := n.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
