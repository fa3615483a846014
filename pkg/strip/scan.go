// Copyright 2025 walteh LLC
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

package strip

import (
	"strings"
)

const versionGatePrefix = "#if LINUX_VERSION_CODE"

type frameKind int

const (
	framePass frameKind = iota // unrelated #if/#ifndef, kept as is
	frameDrop                  // #if LINUX_VERSION_CODE
	frameThen                  // #ifdef before its #else
	frameElse                  // #ifdef after its #else
	frameSkip                  // any conditional inside a dropped region
)

func (k frameKind) emits() bool {
	return k == framePass || k == frameElse
}

// consumes reports whether the frame removes its own directives and
// therefore needs a terminated #endif line to close
func (k frameKind) consumes() bool {
	return k == frameDrop || k == frameThen || k == frameElse
}

type counts struct {
	gates  int
	elses  int
	ifdefs int
}

type frame struct {
	kind   frameKind
	line   int    // index of the opening line
	outLen int    // output length before the opening line
	counts counts // counters before the opening line
}

// scanner rewrites conditionals line by line
type scanner struct {
	lines  []string
	stack  []frame
	out    strings.Builder
	counts counts
}

func (s *Stripper) scan(content string) (string, []RuleResult, error) {
	content, outOfTree, err := s.rule(RuleOutOfTree).apply(content)
	if err != nil {
		return "", nil, err
	}

	sc := &scanner{lines: strings.SplitAfter(content, "\n")}
	body := sc.run()

	out, blank, err := s.rule(RuleCollapseBlank).apply(body)
	if err != nil {
		return "", nil, err
	}

	return out, []RuleResult{
		{Name: RuleOutOfTree, Count: outOfTree},
		{Name: RuleVersionGate, Count: sc.counts.gates},
		{Name: RuleIfdefElse, Count: sc.counts.elses},
		{Name: RuleIfdef, Count: sc.counts.ifdefs},
		{Name: RuleCollapseBlank, Count: blank},
	}, nil
}

// directive returns the directive name of a line starting with '#'
func directive(line string) (string, bool) {
	if !strings.HasPrefix(line, "#") {
		return "", false
	}
	end := 1
	for end < len(line) && line[end] >= 'a' && line[end] <= 'z' {
		end++
	}
	if end == 1 {
		return "", false
	}
	return line[1:end], true
}

func (sc *scanner) emitting() bool {
	for _, f := range sc.stack {
		if !f.kind.emits() {
			return false
		}
	}
	return true
}

func (sc *scanner) top() *frame {
	if len(sc.stack) == 0 {
		return nil
	}
	return &sc.stack[len(sc.stack)-1]
}

func (sc *scanner) run() string {
	for i, line := range sc.lines {
		if !sc.handleDirective(i, line) && sc.emitting() {
			sc.out.WriteString(line)
		}
	}

	// an unterminated block leaves the text from its opener untouched
	for _, f := range sc.stack {
		if f.kind.consumes() {
			sc.counts = f.counts
			return sc.out.String()[:f.outLen] + strings.Join(sc.lines[f.line:], "")
		}
	}
	return sc.out.String()
}

// handleDirective processes conditional directives and reports whether
// the line was handled
func (sc *scanner) handleDirective(i int, line string) bool {
	name, ok := directive(line)
	if !ok {
		return false
	}

	switch name {
	case "if", "ifdef", "ifndef":
		f := frame{line: i, outLen: sc.out.Len(), counts: sc.counts}
		switch {
		case !sc.emitting():
			f.kind = frameSkip
		case strings.HasPrefix(line, versionGatePrefix):
			f.kind = frameDrop
		case name == "ifdef":
			f.kind = frameThen
		default:
			f.kind = framePass
			sc.out.WriteString(line)
		}
		sc.stack = append(sc.stack, f)
		return true

	case "else", "elif":
		top := sc.top()
		if top == nil {
			return false
		}
		switch {
		case top.kind == frameThen && name == "else":
			top.kind = frameElse
		case top.kind == framePass && sc.emitting():
			sc.out.WriteString(line)
		}
		return true

	case "endif":
		top := sc.top()
		if top == nil {
			return false
		}
		if top.kind.consumes() && !strings.HasSuffix(line, "\n") {
			// treated as body text, the block stays open
			return false
		}
		kind := top.kind
		sc.stack = sc.stack[:len(sc.stack)-1]
		switch kind {
		case framePass:
			if sc.emitting() {
				sc.out.WriteString(line)
			}
		case frameDrop:
			sc.counts.gates++
		case frameThen:
			sc.counts.ifdefs++
		case frameElse:
			sc.counts.elses++
		}
		return true
	}

	return false
}
