package typedesc

import (
	"strings"
)

// Descriptor is a type's display name together with its template arguments.
type Descriptor struct {
	// Name is the type name the arguments were parsed from.
	Name string

	// Params holds the template arguments in declaration order with all
	// whitespace removed ("Eigen::Block<...> const" becomes "Eigen::Block<...>const").
	Params []string
}

// Parse extracts the first bracketed template argument segment of name and
// splits it on top-level commas.
//
// Nested template arguments stay intact:
//
//	Eigen::Block<Eigen::Matrix<double, -1, -1, 0, -1, -1>, -1, -1, false>
//
// parses to ["Eigen::Matrix<double,-1,-1,0,-1,-1>", "-1", "-1", "false"].
func Parse(name string) (Descriptor, error) {
	segment, ok := templateSegment(name, strings.IndexByte(name, '<'))
	if !ok || strings.TrimSpace(segment) == "" {
		return Descriptor{}, NewMalformedTypeError(name)
	}

	return Descriptor{Name: name, Params: splitTopLevel(segment)}, nil
}

// Param returns the i-th parameter, or def when the list is too short.
func (d Descriptor) Param(i int, def string) string {
	if i < len(d.Params) {
		return d.Params[i]
	}
	return def
}

// Require fails with MissingParameter unless at least n parameters exist.
func (d Descriptor) Require(n int) error {
	if len(d.Params) < n {
		return NewMissingParameterError(d.Name, len(d.Params), n)
	}
	return nil
}

// templateSegment returns the text strictly between the '<' at open and its
// matching '>'.
func templateSegment(s string, open int) (string, bool) {
	end, ok := MatchingClose(s, open)
	if !ok {
		return "", false
	}
	return s[open+1 : end], true
}

// MatchingClose returns the index of the '>' closing the '<' at open.
func MatchingClose(s string, open int) (int, bool) {
	if open < 0 || open >= len(s) || s[open] != '<' {
		return 0, false
	}
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func splitTopLevel(s string) []string {
	var params []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ',':
			if depth == 0 {
				params = append(params, clean(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(params, clean(s[start:]))
}

func clean(p string) string {
	return strings.Join(strings.Fields(p), "")
}
