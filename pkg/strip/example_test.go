package strip_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/walteh/ootstrip/pkg/strip"
)

func ExampleStrip() {
	src := "#ifdef FEATURE_X\nnew_code();\n#else\nold_code();\n#endif\n"

	fmt.Print(strip.Strip(src))

	// Output:
	// old_code();
}

func ExampleStripper_Strip() {
	// Create a stripper using the line scanner
	stripper, err := strip.NewStripper(strip.Options{Engine: strip.EngineScan})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	content := strings.NewReader("#define OUT_OF_TREE\n\n\n#ifdef UNUSED\ndead_code();\n#endif\ntail();\n")

	result, err := stripper.Strip(context.Background(), content)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Modified: %q\n", result.ModifiedContent)
	fmt.Printf("Changes: %d\n", result.ReplacementCount)
	for _, r := range result.Rules {
		fmt.Printf("%s: %d\n", r.Name, r.Count)
	}

	// Output:
	// Modified: "\n\ntail();\n"
	// Changes: 3
	// out-of-tree-define: 1
	// version-gate: 0
	// ifdef-else: 0
	// ifdef: 1
	// collapse-blank-lines: 1
}
