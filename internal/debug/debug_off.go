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

//go:build !debug

// Package debug includes debugging helpers.
package debug

// Enabled is false unless the package is built with the debug tag. Every
// call site is gated on this constant, so release builds carry none of the
// logging code.
const Enabled = false

// Log does nothing in release builds.
func Log(context []any, operation string, format string, args ...any) {}

// Assert does nothing in release builds.
func Assert(cond bool, format string, args ...any) {}
