// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cfg provides type-level booleans for compile-time parser
// configuration.
//
// The parser is generic over two [Flag] parameters, one per runtime toggle.
// Because [On.Enabled] and [Off.Enabled] are constant after inlining, every
// branch guarded by a flag folds away in the instantiations where it is
// disabled. A plain struct field would not do this: the flag needs to
// influence inlining, not runtime dispatch.
package cfg

// Flag is a compile-time boolean.
type Flag interface {
	On | Off

	// Enabled reports the value of the flag.
	Enabled() bool
}

// On is the true [Flag].
type On struct{}

// Off is the false [Flag].
type Off struct{}

// Enabled implements [Flag].
func (On) Enabled() bool { return true }

// Enabled implements [Flag].
func (Off) Enabled() bool { return false }

// Enabled reports the value of the flag type F.
func Enabled[F Flag]() bool {
	var f F
	return f.Enabled()
}
