package printer

import "strings"

// Family is the closed set of container kinds the printers understand.
type Family int

const (
	FamilyQuaternion Family = iota + 1
	FamilyMatrix
	FamilyBlock
	FamilyVectorBlock
	FamilySparseMatrix
	FamilyArray
)

// String returns the family name used in logs and CLI output.
func (f Family) String() string {
	switch f {
	case FamilyQuaternion:
		return "quaternion"
	case FamilyMatrix:
		return "matrix"
	case FamilyBlock:
		return "block"
	case FamilyVectorBlock:
		return "vector_block"
	case FamilySparseMatrix:
		return "sparse_matrix"
	case FamilyArray:
		return "array"
	default:
		return "unknown"
	}
}

// Rule maps a type tag prefix to a family.
type Rule struct {
	Prefix string
	Family Family
}

// Matches reports whether tag is a full template instantiation starting
// with the rule's prefix ("Eigen::Matrix<...>").
func (r Rule) Matches(tag string) bool {
	return strings.HasPrefix(tag, r.Prefix) && strings.HasSuffix(tag, ">")
}

// Registry is an ordered, immutable list of rules. The first matching rule
// wins.
type Registry struct {
	rules []Rule
}

// NewRegistry builds a registry from rules in priority order.
func NewRegistry(rules ...Rule) *Registry {
	return &Registry{rules: append([]Rule(nil), rules...)}
}

// DefaultRegistry returns the rules for the Eigen container family.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Rule{Prefix: "Eigen::Quaternion<", Family: FamilyQuaternion},
		Rule{Prefix: "Eigen::Matrix<", Family: FamilyMatrix},
		Rule{Prefix: "Eigen::Block<", Family: FamilyBlock},
		Rule{Prefix: "Eigen::VectorBlock<", Family: FamilyVectorBlock},
		Rule{Prefix: "Eigen::SparseMatrix<", Family: FamilySparseMatrix},
		Rule{Prefix: "Eigen::Array<", Family: FamilyArray},
	)
}

// Classify returns the family of the first rule matching tag.
func (r *Registry) Classify(tag string) (Family, bool) {
	for _, rule := range r.rules {
		if rule.Matches(tag) {
			return rule.Family, true
		}
	}
	return 0, false
}

// Rules returns a copy of the rules in priority order.
func (r *Registry) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}
