package rpctree

import "strings"

// Separator separates method path segments. There is no escaping: a literal
// "." is always a separator, so segment names never contain one.
const Separator = "."

// SplitPath splits a method path into its segments.
// The error is an *UnresolvedError for empty paths and empty segments.
func SplitPath(path string) ([]string, error) {
	if path == "" {
		return nil, &UnresolvedError{Path: path, Reason: ReasonEmptyPath}
	}
	segments := strings.Split(path, Separator)
	for i, s := range segments {
		if s == "" {
			return nil, &UnresolvedError{Path: path, Depth: i, Reason: ReasonEmptySegment}
		}
	}
	return segments, nil
}

// JoinPath joins segments into a method path.
func JoinPath(segments ...string) string {
	return strings.Join(segments, Separator)
}
