// Package profile records where constraints and case splits are created.
//
// A session is started with Start and ended with Stop; while at least one
// session is active, Pool.Add and the activation decoder record a sample with
// the caller's stack. Stop writes the samples in pprof format, to be inspected
// with go tool pprof.
package profile

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/pprof/profile"
	"github.com/nnverify/plsearch/logger"
)

const (
	idxConstraints = iota
	idxCaseSplits
)

var (
	sessions       []*Profile
	activeSessions uint32
	lock           sync.Mutex
)

// Profile is a profiling session.
type Profile struct {
	pprof     profile.Profile
	functions map[string]*profile.Function
	locations map[uint64]*profile.Location
	start     time.Time

	filePath string
	noOutput bool
}

// Option configures a session.
type Option func(*Profile)

// WithPath sets the output file of the session. Default is plsearch.pprof.
func WithPath(path string) Option {
	return func(p *Profile) {
		p.filePath = path
	}
}

// WithNoOutput keeps the samples in memory only.
func WithNoOutput() Option {
	return func(p *Profile) {
		p.noOutput = true
	}
}

// Start a new profiling session.
func Start(options ...Option) *Profile {
	p := &Profile{
		functions: make(map[string]*profile.Function),
		locations: make(map[uint64]*profile.Location),
		filePath:  "plsearch.pprof",
		start:     time.Now(),
	}
	p.pprof.SampleType = []*profile.ValueType{
		{Type: "constraints", Unit: "count"},
		{Type: "case_splits", Unit: "count"},
	}
	p.pprof.TimeNanos = p.start.UnixNano()
	for _, option := range options {
		option(p)
	}

	lock.Lock()
	sessions = append(sessions, p)
	atomic.AddUint32(&activeSessions, 1)
	lock.Unlock()
	return p
}

// Stop ends the session and writes the samples, unless WithNoOutput was set.
// Calling Stop twice is a no-op.
func (p *Profile) Stop() {
	lock.Lock()
	found := false
	for i, s := range sessions {
		if s == p {
			sessions = append(sessions[:i], sessions[i+1:]...)
			atomic.AddUint32(&activeSessions, ^uint32(0))
			found = true
			break
		}
	}
	p.pprof.DurationNanos = time.Since(p.start).Nanoseconds()
	lock.Unlock()

	if !found || p.noOutput {
		return
	}

	log := logger.Logger()
	f, err := os.Create(p.filePath)
	if err != nil {
		log.Error().Err(err).Str("path", p.filePath).Msg("could not create profile file")
		return
	}
	defer f.Close()
	if err := p.pprof.Write(f); err != nil {
		log.Error().Err(err).Str("path", p.filePath).Msg("could not write profile")
		return
	}
	log.Info().Str("path", p.filePath).Msg("profile written; inspect with go tool pprof")
}

// NbConstraints returns the number of pooled constraints recorded.
func (p *Profile) NbConstraints() int {
	return p.total(idxConstraints)
}

// NbCaseSplits returns the number of decoded case splits recorded.
func (p *Profile) NbCaseSplits() int {
	return p.total(idxCaseSplits)
}

func (p *Profile) total(idx int) int {
	lock.Lock()
	defer lock.Unlock()
	n := 0
	for _, s := range p.pprof.Sample {
		n += int(s.Value[idx])
	}
	return n
}

// Top returns the functions creating the most constraints and case splits,
// most active first.
func (p *Profile) Top() string {
	lock.Lock()
	byFunc := make(map[string][2]int64)
	for _, s := range p.pprof.Sample {
		if len(s.Location) == 0 || len(s.Location[0].Line) == 0 {
			continue
		}
		name := s.Location[0].Line[0].Function.Name
		v := byFunc[name]
		v[0] += s.Value[idxConstraints]
		v[1] += s.Value[idxCaseSplits]
		byFunc[name] = v
	}
	lock.Unlock()

	names := make([]string, 0, len(byFunc))
	for name := range byFunc {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		vi, vj := byFunc[names[i]], byFunc[names[j]]
		if vi[0]+vi[1] != vj[0]+vj[1] {
			return vi[0]+vi[1] > vj[0]+vj[1]
		}
		return names[i] < names[j]
	})

	var sbb strings.Builder
	sbb.WriteString("constraints  case_splits  function\n")
	for _, name := range names {
		v := byFunc[name]
		sbb.WriteString(fmt.Sprintf("%11d  %11d  %s\n", v[0], v[1], name))
	}
	return sbb.String()
}

// RecordConstraint records a pooled constraint in every active session.
func RecordConstraint() {
	record(idxConstraints)
}

// RecordCaseSplit records a decoded case split in every active session.
func RecordCaseSplit() {
	record(idxCaseSplits)
}

func record(idx int) {
	if atomic.LoadUint32(&activeSessions) == 0 {
		return
	}
	pc := make([]uintptr, 20)
	// skip runtime.Callers, record and the exported Record* function
	n := runtime.Callers(3, pc)
	if n == 0 {
		return
	}
	frames := runtime.CallersFrames(pc[:n])
	var stack []runtime.Frame
	for {
		frame, more := frames.Next()
		stack = append(stack, frame)
		if !more {
			break
		}
	}

	lock.Lock()
	defer lock.Unlock()
	for _, s := range sessions {
		s.addSample(idx, stack)
	}
}

func (p *Profile) addSample(idx int, stack []runtime.Frame) {
	sample := &profile.Sample{Value: make([]int64, len(p.pprof.SampleType))}
	sample.Value[idx] = 1
	for _, frame := range stack {
		sample.Location = append(sample.Location, p.location(frame))
	}
	p.pprof.Sample = append(p.pprof.Sample, sample)
}

func (p *Profile) location(frame runtime.Frame) *profile.Location {
	if l, ok := p.locations[uint64(frame.PC)]; ok {
		return l
	}
	fn, ok := p.functions[frame.Function]
	if !ok {
		fn = &profile.Function{
			ID:         uint64(len(p.pprof.Function) + 1),
			Name:       frame.Function,
			SystemName: frame.Function,
			Filename:   frame.File,
		}
		p.functions[frame.Function] = fn
		p.pprof.Function = append(p.pprof.Function, fn)
	}
	l := &profile.Location{
		ID:      uint64(len(p.pprof.Location) + 1),
		Address: uint64(frame.PC),
		Line:    []profile.Line{{Function: fn, Line: int64(frame.Line)}},
	}
	p.locations[uint64(frame.PC)] = l
	p.pprof.Location = append(p.pprof.Location, l)
	return l
}
