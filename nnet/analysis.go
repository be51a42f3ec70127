package nnet

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

var ErrUnsoundAnnotation = errors.New("unsound activation annotation")

// Severity of an analysis issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// AnalysisConfig configures the annotation soundness analysis.
type AnalysisConfig struct {
	// Tolerance used to compare bounds and boundary values
	Tolerance float64
	// CheckContinuity reports adjacent regions disagreeing on their shared bound
	CheckContinuity bool
}

// DefaultAnalysisConfig returns sensible defaults for analysis.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Tolerance:       1e-9,
		CheckContinuity: true,
	}
}

// AnalysisResult contains the results of the annotation analysis.
type AnalysisResult struct {
	TotalNeurons int
	TotalRegions int
	Issues       []Issue
	Passed       []string
}

// Issue represents a potential soundness issue in one annotation.
type Issue struct {
	Severity Severity
	// Type: "malformed", "empty-region", "coverage-gap", "overlap", "discontinuous", "point-region"
	Type        string
	Description string
	Neuron      NeuronIndex
	// Region is the index of the region in the annotation, -1 if not relevant
	Region  int
	Details string
}

// HasCritical returns true if there are critical issues.
func (r *AnalysisResult) HasCritical() bool {
	return r.count(SeverityCritical) > 0
}

// HasWarnings returns true if there are warnings.
func (r *AnalysisResult) HasWarnings() bool {
	return r.count(SeverityWarning) > 0
}

func (r *AnalysisResult) count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// Analyze checks that every annotation of the network describes a function
// of its input: regions are non-empty, cover the real line, do not overlap
// and, optionally, agree where they touch.
func Analyze(n *Network, cfg AnalysisConfig) *AnalysisResult {
	res := &AnalysisResult{}
	for _, idx := range n.AnnotatedNeurons() {
		res.TotalNeurons++
		res.analyzeNeuron(idx, n.Activations[idx], cfg)
	}
	return res
}

type indexedRegion struct {
	Region
	pos int
}

func (r *AnalysisResult) analyzeNeuron(idx NeuronIndex, annotation string, cfg AnalysisConfig) {
	regions, token, err := defaultSyntax.parse(annotation)
	if err != nil {
		derr := &DecodeError{Neuron: idx, Annotation: annotation, Token: token, Err: err}
		r.Issues = append(r.Issues, Issue{
			Severity:    SeverityCritical,
			Type:        "malformed",
			Description: derr.Error(),
			Neuron:      idx,
			Region:      -1,
		})
		return
	}
	r.TotalRegions += len(regions)

	var flagged bitset.BitSet
	report := func(issue Issue) {
		issue.Neuron = idx
		if issue.Region >= 0 {
			flagged.Set(uint(issue.Region))
		}
		r.Issues = append(r.Issues, issue)
	}

	sorted := make([]indexedRegion, 0, len(regions))
	for i, reg := range regions {
		switch {
		case reg.Lower > reg.Upper+cfg.Tolerance:
			report(Issue{
				Severity:    SeverityCritical,
				Type:        "empty-region",
				Description: fmt.Sprintf("region %d has lower bound %g above upper bound %g", i, reg.Lower, reg.Upper),
				Region:      i,
			})
			continue
		case math.Abs(reg.Upper-reg.Lower) <= cfg.Tolerance:
			report(Issue{
				Severity:    SeverityInfo,
				Type:        "point-region",
				Description: fmt.Sprintf("region %d is the single point %g", i, reg.Lower),
				Region:      i,
			})
		}
		sorted = append(sorted, indexedRegion{Region: reg, pos: i})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Lower < sorted[j].Lower
	})

	reach := math.Inf(-1)
	for i, reg := range sorted {
		if i == 0 && !math.IsInf(reg.Lower, -1) {
			report(Issue{
				Severity:    SeverityCritical,
				Type:        "coverage-gap",
				Description: fmt.Sprintf("inputs below %g are not covered", reg.Lower),
				Region:      -1,
			})
		}
		if i > 0 {
			prev := sorted[i-1]
			switch {
			case reg.Lower > reach+cfg.Tolerance:
				report(Issue{
					Severity:    SeverityCritical,
					Type:        "coverage-gap",
					Description: fmt.Sprintf("inputs in (%g, %g) are not covered", reach, reg.Lower),
					Region:      -1,
				})
			case reg.Lower < reach-cfg.Tolerance:
				report(Issue{
					Severity:    SeverityWarning,
					Type:        "overlap",
					Description: fmt.Sprintf("region %d overlaps a previous region on [%g, %g]", reg.pos, reg.Lower, math.Min(reach, reg.Upper)),
					Region:      reg.pos,
				})
			case cfg.CheckContinuity && math.Abs(prev.Upper-reg.Lower) <= cfg.Tolerance:
				left, right := prev.Apply(prev.Upper), reg.Apply(reg.Lower)
				if math.Abs(left-right) > cfg.Tolerance {
					report(Issue{
						Severity:    SeverityWarning,
						Type:        "discontinuous",
						Description: fmt.Sprintf("regions %d and %d disagree at %g", prev.pos, reg.pos, reg.Lower),
						Region:      reg.pos,
						Details:     fmt.Sprintf("f = %g on the left, f = %g on the right", left, right),
					})
				}
			}
		}
		reach = math.Max(reach, reg.Upper)
	}
	if len(sorted) > 0 && !math.IsInf(reach, 1) {
		report(Issue{
			Severity:    SeverityCritical,
			Type:        "coverage-gap",
			Description: fmt.Sprintf("inputs above %g are not covered", reach),
			Region:      -1,
		})
	}

	clean := uint(len(regions)) - flagged.Count()
	r.Passed = append(r.Passed, fmt.Sprintf("neuron %s: %d/%d regions without issue", idx, clean, len(regions)))
}

// Print writes a human-readable analysis report.
func (r *AnalysisResult) Print(w io.Writer) {
	fmt.Fprintf(w, "========================================\n")
	fmt.Fprintf(w, "Activation Annotation Analysis\n")
	fmt.Fprintf(w, "========================================\n")
	fmt.Fprintf(w, "Neurons: %d\n", r.TotalNeurons)
	fmt.Fprintf(w, "Regions: %d\n", r.TotalRegions)
	fmt.Fprintf(w, "\n")

	if len(r.Passed) > 0 {
		fmt.Fprintf(w, "--- CHECKED ---\n")
		for _, p := range r.Passed {
			fmt.Fprintf(w, "  %s\n", p)
		}
		fmt.Fprintf(w, "\n")
	}

	if len(r.Issues) == 0 {
		fmt.Fprintf(w, "No issues found.\n")
		return
	}

	critical, warnings, info := r.count(SeverityCritical), r.count(SeverityWarning), r.count(SeverityInfo)
	fmt.Fprintf(w, "--- ISSUES FOUND ---\n")
	fmt.Fprintf(w, "Critical: %d, Warnings: %d, Info: %d\n\n", critical, warnings, info)

	for i, issue := range r.Issues {
		fmt.Fprintf(w, "%d. [%s] %s %s: %s\n", i+1, issue.Severity, issue.Neuron, issue.Type, issue.Description)
		if issue.Details != "" {
			fmt.Fprintf(w, "   Details: %s\n", issue.Details)
		}
		if issue.Region >= 0 {
			fmt.Fprintf(w, "   Region index: %d\n", issue.Region)
		}
	}

	fmt.Fprintf(w, "========================================\n")
	switch {
	case critical > 0:
		fmt.Fprintf(w, "RESULT: CRITICAL ISSUES FOUND\n")
	case warnings > 0:
		fmt.Fprintf(w, "RESULT: WARNINGS FOUND\n")
	default:
		fmt.Fprintf(w, "RESULT: PASSED (info only)\n")
	}
	fmt.Fprintf(w, "========================================\n")
}

// Err returns an error listing the critical issues, or nil.
func (r *AnalysisResult) Err() error {
	var msgs []string
	for _, issue := range r.Issues {
		if issue.Severity == SeverityCritical {
			msgs = append(msgs, fmt.Sprintf("neuron %s: %s: %s", issue.Neuron, issue.Type, issue.Description))
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsoundAnnotation, strings.Join(msgs, "; "))
}
