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

// Package plsearch is the branching core of a neural network verifier.
//
// The verifier proves or refutes properties of piecewise-linear networks by
// splitting on activation behaviour. This module provides:
//   - the linear region vocabulary shared with the linear solver (package constraint)
//   - the heuristic choosing which undecided constraint to split next (package branching)
//   - the decoder turning per-neuron activation annotations into disjunctions (package nnet)
package plsearch

import "github.com/blang/semver/v4"

// Version of the module. Serialized networks carry it in their header.
var Version = semver.MustParse("0.3.0")
