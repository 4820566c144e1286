package tree

import "strings"

// Separator delimits simple names in a path
const Separator = "/"

// splitPath trims surrounding separators and splits p into its simple names.
// An empty path yields no fragments.
func splitPath(p string) []string {
	p = strings.Trim(p, Separator)
	if p == "" {
		return nil
	}
	return strings.Split(p, Separator)
}

// CleanPath drops leading and trailing separators
func CleanPath(p string) string {
	return strings.Join(splitPath(p), Separator)
}

// JoinPath joins non-empty fragments with the separator
func JoinPath(frags ...string) string {
	parts := make([]string, 0, len(frags))
	for _, f := range frags {
		if f = CleanPath(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, Separator)
}

// SplitParent splits p into its immediate parent path and simple name.
// "a/b/c" -> ("a/b", "c"); "a" -> ("", "a")
func SplitParent(p string) (dir, name string) {
	frags := splitPath(p)
	if len(frags) == 0 {
		return "", ""
	}
	return strings.Join(frags[:len(frags)-1], Separator), frags[len(frags)-1]
}

// validatePath rejects empty paths and paths with empty segments ("a//b")
func validatePath(p string) error {
	frags := splitPath(p)
	if len(frags) == 0 {
		return ErrInvalidPath
	}
	for _, f := range frags {
		if f == "" {
			return ErrInvalidPath
		}
	}
	return nil
}

// descend walks frags from n one child at a time. No fragments returns n.
func descend(n *Node, frags []string) (*Node, error) {
	cur := n
	for _, f := range frags {
		child, ok := cur.GetChild(f)
		if !ok {
			return nil, ErrNotFound
		}
		cur = child
	}
	return cur, nil
}
