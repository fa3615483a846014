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

/*
Package strip removes out-of-tree build scaffolding from kernel module sources.

	+-----------+     +--------------------+     +-----------+
	|   input   | --> |  rule 1 .. rule 5  | --> |  output   |
	| (one str) |     | (ordered rewrites) |     | (one str) |
	+-----------+     +--------------------+     +-----------+

🎯 Purpose:
- Drop the #define OUT_OF_TREE marker
- Drop #if LINUX_VERSION_CODE compatibility blocks
- Collapse #ifdef/#else/#endif to the #else body
- Drop any remaining #ifdef/#endif blocks
- Squeeze runs of blank lines down to one

⚙️ Engines:
- EngineRegex runs the rules as backtracking regular expressions. Which span
  a rule matches is decided by leftmost-first backtracking, so nested or
  repeated conditionals are handled exactly as the patterns dictate.
- EngineScan walks the input line by line with a stack of open conditionals.
  It only recognizes directives at the start of a line and tracks nesting, so
  nested #if blocks inside a kept #else body survive intact.

Both engines agree on single, non-nested conditionals.
*/
package strip
