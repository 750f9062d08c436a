// Package stacktrace trims panic stacks down to this service's own frames.
package stacktrace

import "strings"

const marker = "/internal/"

// InternalPaths returns the "internal/<pkg>/<file>.go:<line>" locations found
// in a stack produced by runtime/debug.Stack.
func InternalPaths(stack []byte) []string {
	var paths []string

	for _, line := range strings.Split(string(stack), "\n") {
		// file lines look like "\t/src/internal/x/y.go:42 +0x1d"
		loc, _, _ := strings.Cut(strings.TrimSpace(line), " +0x")
		idx := strings.Index(loc, marker)
		if idx == -1 || !strings.Contains(loc[idx:], ".go:") {
			continue
		}

		paths = append(paths, loc[idx+1:])
	}

	return paths
}
