// Package branching picks the piecewise-linear constraint the search engine
// splits on next.
//
// Every tracked constraint carries a score; the constraint with the greatest
// score is the most urgent one. The score table and the ordered index used to
// retrieve the maximum are kept behind one type and updated together, so a
// selection never reflects a stale score.
package branching

import (
	"fmt"
	"math"

	"github.com/bits-and-blooms/bitset"
	rbt "github.com/emirpasic/gods/trees/redblacktree"
	"github.com/rs/zerolog"

	"github.com/nnverify/plsearch/constraint"
	"github.com/nnverify/plsearch/debug"
	"github.com/nnverify/plsearch/logger"
)

// InitialScore is the score of every constraint after Initialize.
const InitialScore = 1.0

// Engine supplies the live set of undecided constraints.
// *constraint.Pool implements it.
type Engine interface {
	PiecewiseLinearConstraints() []constraint.PiecewiseLinearConstraint
}

// Heuristics is not safe for concurrent use; parallel workers each own one.
type Heuristics struct {
	table       []entry
	tracked     bitset.BitSet
	index       *rbt.Tree
	initialized bool
	log         zerolog.Logger
}

type entry struct {
	c     constraint.PiecewiseLinearConstraint
	score float64
}

// key orders the index: greatest score first, then smallest identity.
type key struct {
	score float64
	id    int
}

func compareKeys(a, b interface{}) int {
	ka, kb := a.(key), b.(key)
	switch {
	case ka.score > kb.score:
		return -1
	case ka.score < kb.score:
		return 1
	case ka.id < kb.id:
		return -1
	case ka.id > kb.id:
		return 1
	}
	return 0
}

// Option configures Heuristics.
type Option func(*Heuristics)

// WithLogger overrides the global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Heuristics) {
		h.log = l
	}
}

// New returns uninitialized heuristics.
func New(opts ...Option) *Heuristics {
	h := &Heuristics{
		index: rbt.NewWith(compareKeys),
		log:   logger.Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitializeFrom tracks every constraint the engine reports.
func (h *Heuristics) InitializeFrom(e Engine) {
	h.Initialize(e.PiecewiseLinearConstraints())
}

// Initialize tracks constraints, each with InitialScore.
//
// It panics if the heuristics are already initialized (see Reset), if a
// constraint appears twice, or if a constraint has no identity.
func (h *Heuristics) Initialize(constraints []constraint.PiecewiseLinearConstraint) {
	if h.initialized {
		panic("branching heuristics already initialized")
	}
	for _, c := range constraints {
		id := c.ID()
		if id < 0 {
			panic("constraint has no identity; add it to a pool first")
		}
		if h.tracked.Test(uint(id)) {
			panic(fmt.Sprintf("constraint %d appears twice", id))
		}
		if id >= len(h.table) {
			h.table = append(h.table, make([]entry, id+1-len(h.table))...)
		}
		h.table[id] = entry{c: c, score: InitialScore}
		h.tracked.Set(uint(id))
		h.index.Put(key{score: InitialScore, id: id}, c)
	}
	h.initialized = true
	h.checkConsistency()

	h.log.Debug().Int("nbConstraints", h.index.Size()).Msg("branching heuristics initialized")
}

// UpdateScore sets the score of c and re-keys it in the ordered index.
//
// It panics if c is not tracked or if score is NaN.
func (h *Heuristics) UpdateScore(c constraint.PiecewiseLinearConstraint, score float64) {
	id := h.mustLookup(c)
	if math.IsNaN(score) {
		panic(fmt.Sprintf("NaN score for constraint %d", id))
	}
	old := h.table[id].score
	if old == score {
		return
	}
	h.index.Remove(key{score: old, id: id})
	h.index.Put(key{score: score, id: id}, c)
	h.table[id].score = score
	h.checkConsistency()

	h.log.Trace().Int("constraint", id).Float64("from", old).Float64("to", score).Msg("score updated")
}

// PickMaxScore returns the constraint with the greatest score; ties go to the
// smallest identity. The constraint stays tracked.
//
// It panics if no constraint is tracked.
func (h *Heuristics) PickMaxScore() constraint.PiecewiseLinearConstraint {
	if h.index.Empty() {
		panic("no constraint to pick from")
	}
	node := h.index.Left()
	k := node.Key.(key)
	h.log.Trace().Int("constraint", k.id).Float64("score", k.score).Msg("picked branching constraint")
	return node.Value.(constraint.PiecewiseLinearConstraint)
}

// Score returns the current score of c, and false if c is not tracked.
func (h *Heuristics) Score(c constraint.PiecewiseLinearConstraint) (float64, bool) {
	id := c.ID()
	if !h.tracks(c) {
		return 0, false
	}
	return h.table[id].score, true
}

// Len returns the number of tracked constraints.
func (h *Heuristics) Len() int {
	return h.index.Size()
}

// Reset forgets every constraint; Initialize may be called again.
func (h *Heuristics) Reset() {
	h.table = nil
	h.tracked.ClearAll()
	h.index.Clear()
	h.initialized = false
}

func (h *Heuristics) tracks(c constraint.PiecewiseLinearConstraint) bool {
	id := c.ID()
	return id >= 0 && h.tracked.Test(uint(id)) && h.table[id].c == c
}

func (h *Heuristics) mustLookup(c constraint.PiecewiseLinearConstraint) int {
	if !h.tracks(c) {
		panic(fmt.Sprintf("constraint %d is not tracked", c.ID()))
	}
	return c.ID()
}

func (h *Heuristics) checkConsistency() {
	if !debug.Debug {
		return
	}
	if uint(h.index.Size()) != h.tracked.Count() {
		panic(fmt.Sprintf("ordered index has %d entries, score table %d", h.index.Size(), h.tracked.Count()))
	}
	it := h.index.Iterator()
	for it.Next() {
		k := it.Key().(key)
		if h.table[k.id].score != k.score {
			panic(fmt.Sprintf("stale index entry for constraint %d", k.id))
		}
	}
}
