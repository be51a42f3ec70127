// Copyright 2020 ConsenSys AG
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package constraint

// DisjunctionConstraint is an explicit, ordered list of mutually exclusive
// regions.
type DisjunctionConstraint struct {
	identity
	splits []CaseSplit
}

var _ PiecewiseLinearConstraint = &DisjunctionConstraint{}

// NewDisjunctionConstraint returns a disjunction over deep copies of splits.
func NewDisjunctionConstraint(splits []CaseSplit) *DisjunctionConstraint {
	d := &DisjunctionConstraint{splits: make([]CaseSplit, len(splits))}
	for i := range splits {
		d.splits[i] = splits[i].Clone()
	}
	return d
}

// Len returns the number of regions.
func (d *DisjunctionConstraint) Len() int {
	return len(d.splits)
}

func (d *DisjunctionConstraint) CaseSplits() []CaseSplit {
	res := make([]CaseSplit, len(d.splits))
	for i := range d.splits {
		res[i] = d.splits[i].Clone()
	}
	return res
}

func (d *DisjunctionConstraint) Participates(vID uint32) bool {
	return participates(d.splits, vID)
}

func (d *DisjunctionConstraint) Satisfied(assignment map[uint32]float64) bool {
	for i := range d.splits {
		if d.splits[i].Holds(assignment, Epsilon) {
			return true
		}
	}
	return false
}

// MatchingSplits returns the index of every region holding under assignment.
// More than one index away from region boundaries means the regions overlap,
// which is a modeling defect of whoever built the disjunction.
func (d *DisjunctionConstraint) MatchingSplits(assignment map[uint32]float64) []int {
	var res []int
	for i := range d.splits {
		if d.splits[i].Holds(assignment, Epsilon) {
			res = append(res, i)
		}
	}
	return res
}

// String formats the constraint as {..} ∨ {..}.
func (d *DisjunctionConstraint) String(r Resolver) string {
	sbb := NewStringBuilder(r)
	if len(d.splits) == 0 {
		sbb.WriteString("⊥")
		return sbb.String()
	}
	for i := range d.splits {
		if i > 0 {
			sbb.WriteString(" ∨ ")
		}
		sbb.WriteString(d.splits[i].String(sbb.Resolver))
	}
	return sbb.String()
}
