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
	"time"

	"github.com/dlclark/regexp2"
	"gitlab.com/tozd/go/errors"
)

// Rule is a single rewrite applied to the whole buffer
type Rule struct {
	// Name identifies the rule in logs and results
	Name string `json:"name" yaml:"name"`

	// Description says what the rule removes
	Description string `json:"description" yaml:"description"`

	// Pattern is a regexp2 expression compiled with Singleline
	Pattern string `json:"pattern" yaml:"pattern"`

	// Replacement is the substitution template, $N refers to group N.
	// Empty deletes the match.
	Replacement string `json:"replacement" yaml:"replacement"`
}

// RuleResult reports how often a rule matched
type RuleResult struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

const (
	RuleOutOfTree     = "out-of-tree-define"
	RuleVersionGate   = "version-gate"
	RuleIfdefElse     = "ifdef-else"
	RuleIfdef         = "ifdef"
	RuleCollapseBlank = "collapse-blank-lines"
)

// 🗺️ rules is the fixed pipeline, order matters
var rules = []Rule{
	newRule(RuleOutOfTree,
		"remove the #define OUT_OF_TREE marker",
		`#define OUT_OF_TREE`, ""),
	newRule(RuleVersionGate,
		"remove #if LINUX_VERSION_CODE ... #endif blocks",
		`#if LINUX_VERSION_CODE.*?#endif\n`, ""),
	newRule(RuleIfdefElse,
		"replace #ifdef ... #else ... #endif with the #else body",
		`#ifdef((?!#endif).)*?#else\n(.*?)#endif\n`, "$2"),
	newRule(RuleIfdef,
		"remove remaining #ifdef ... #endif blocks",
		`#ifdef.*?#endif\n`, ""),
	newRule(RuleCollapseBlank,
		"collapse runs of blank lines into one",
		`\n{2,}`, "\n\n"),
}

func newRule(name, description, pattern, replacement string) Rule {
	return Rule{
		Name:        name,
		Description: description,
		Pattern:     pattern,
		Replacement: replacement,
	}
}

// Rules returns a copy of the rule table in application order
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// compiledRule pairs a rule with its compiled expression
type compiledRule struct {
	Rule
	re *regexp2.Regexp
}

// compileRules compiles the table. A zero timeout means no limit.
func compileRules(timeout time.Duration) []compiledRule {
	out := make([]compiledRule, len(rules))
	for i, r := range rules {
		re := regexp2.MustCompile(r.Pattern, regexp2.Singleline)
		if timeout > 0 {
			re.MatchTimeout = timeout
		}
		out[i] = compiledRule{Rule: r, re: re}
	}
	return out
}

// apply rewrites content and returns the number of matches replaced
func (r compiledRule) apply(content string) (string, int, error) {
	count := 0
	m, err := r.re.FindStringMatch(content)
	for err == nil && m != nil {
		count++
		m, err = r.re.FindNextMatch(m)
	}
	if err != nil {
		return "", 0, errors.Errorf("matching rule %s: %w", r.Name, err)
	}
	if count == 0 {
		return content, 0, nil
	}

	out, err := r.re.Replace(content, r.Replacement, -1, -1)
	if err != nil {
		return "", 0, errors.Errorf("applying rule %s: %w", r.Name, err)
	}
	return out, count, nil
}
