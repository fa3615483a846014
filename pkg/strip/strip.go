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
	"context"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Engine selects how conditional blocks are found
type Engine string

const (
	// EngineRegex applies the rule table with backtracking regular expressions
	EngineRegex Engine = "regex"
	// EngineScan walks lines with an explicit conditional stack
	EngineScan Engine = "scan"
)

// Engines lists the accepted engine names
func Engines() []Engine {
	return []Engine{EngineRegex, EngineScan}
}

// ParseEngine converts a flag value into an Engine
func ParseEngine(s string) (Engine, error) {
	for _, e := range Engines() {
		if string(e) == s {
			return e, nil
		}
	}
	return "", errors.Errorf("unknown engine %q (want regex or scan)", s)
}

// Options configures a Stripper
type Options struct {
	// Engine defaults to EngineRegex
	Engine Engine
	// MatchTimeout bounds each regex rule, zero means no limit
	MatchTimeout time.Duration
}

// Result contains the outcome of a strip run
type Result struct {
	// WasModified indicates the output differs from the input
	WasModified bool

	// ReplacementCount is the total number of rule matches
	ReplacementCount int

	// Rules holds per-rule match counts in application order
	Rules []RuleResult

	// OriginalContent is the input as read
	OriginalContent []byte

	// ModifiedContent is the transformed output
	ModifiedContent []byte
}

// Stripper applies the rule pipeline
type Stripper struct {
	engine Engine
	rules  []compiledRule
}

// NewStripper creates a Stripper
func NewStripper(opts Options) (*Stripper, error) {
	engine := opts.Engine
	if engine == "" {
		engine = EngineRegex
	}
	if _, err := ParseEngine(string(engine)); err != nil {
		return nil, err
	}
	if opts.MatchTimeout < 0 {
		return nil, errors.Errorf("match timeout must not be negative, got %s", opts.MatchTimeout)
	}
	return &Stripper{
		engine: engine,
		rules:  compileRules(opts.MatchTimeout),
	}, nil
}

var defaultStripper = &Stripper{engine: EngineRegex, rules: compileRules(0)}

// Strip applies the five rules to text with the regex engine.
// Input is expected to be valid UTF-8.
func Strip(text string) string {
	res, err := defaultStripper.run(normalizeNewlines(text))
	if err != nil {
		// unreachable without a match timeout
		panic(err)
	}
	return string(res.ModifiedContent)
}

// Strip reads all of content and applies the pipeline
func (s *Stripper) Strip(ctx context.Context, content io.Reader) (*Result, error) {
	original, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}
	if !utf8.Valid(original) {
		return nil, errors.New("content is not valid UTF-8")
	}

	res, err := s.run(normalizeNewlines(string(original)))
	if err != nil {
		return nil, err
	}
	res.OriginalContent = original
	res.WasModified = string(original) != string(res.ModifiedContent)

	logger := zerolog.Ctx(ctx)
	for _, rr := range res.Rules {
		logger.Debug().Str("rule", rr.Name).Int("matches", rr.Count).Str("engine", string(s.engine)).Msg("rule applied")
	}
	logger.Debug().
		Int("bytes_in", len(res.OriginalContent)).
		Int("bytes_out", len(res.ModifiedContent)).
		Int("replacements", res.ReplacementCount).
		Msg("strip complete")

	return res, nil
}

func (s *Stripper) run(content string) (*Result, error) {
	var (
		out     string
		results []RuleResult
		err     error
	)
	switch s.engine {
	case EngineScan:
		out, results, err = s.scan(content)
	default:
		out, results, err = s.regex(content)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{
		OriginalContent: []byte(content),
		ModifiedContent: []byte(out),
		Rules:           results,
		WasModified:     out != content,
	}
	for _, rr := range results {
		res.ReplacementCount += rr.Count
	}
	return res, nil
}

func (s *Stripper) regex(content string) (string, []RuleResult, error) {
	results := make([]RuleResult, 0, len(s.rules))
	for _, rule := range s.rules {
		next, n, err := rule.apply(content)
		if err != nil {
			return "", nil, err
		}
		results = append(results, RuleResult{Name: rule.Name, Count: n})
		content = next
	}
	return content, results, nil
}

func (s *Stripper) rule(name string) compiledRule {
	for _, r := range s.rules {
		if r.Name == name {
			return r
		}
	}
	panic("unknown rule " + name)
}

// normalizeNewlines turns \r\n and lone \r into \n
func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
