package snapshot

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/eigenview/internal/typedesc"
)

// Kind is the container kind of a snapshot value.
type Kind string

const (
	KindMatrix      Kind = "matrix"
	KindArray       Kind = "array"
	KindBlock       Kind = "block"
	KindVectorBlock Kind = "vector_block"
	KindSparse      Kind = "sparse"
	KindQuaternion  Kind = "quaternion"
)

// DefaultScalar is used when a value omits its scalar type.
const DefaultScalar = "double"

// DefaultSentinel is the default spelling of a dynamic size parameter.
const DefaultSentinel = "-1"

// Document is a named set of values, as a debugger frame would show them.
type Document struct {
	Values []Value `yaml:"values" json:"values"`
}

// Value describes one variable at the container level. Which fields apply
// depends on Kind.
type Value struct {
	Name   string `yaml:"name" json:"name"`
	Kind   Kind   `yaml:"kind" json:"kind"`
	Scalar string `yaml:"scalar,omitempty" json:"scalar,omitempty"`

	// Dense and sparse shape.
	Rows        int    `yaml:"rows,omitempty" json:"rows,omitempty"`
	Cols        int    `yaml:"cols,omitempty" json:"cols,omitempty"`
	DynamicRows bool   `yaml:"dynamic_rows,omitempty" json:"dynamic_rows,omitempty"`
	DynamicCols bool   `yaml:"dynamic_cols,omitempty" json:"dynamic_cols,omitempty"`
	Sentinel    string `yaml:"sentinel,omitempty" json:"sentinel,omitempty"`
	RowMajor    bool   `yaml:"row_major,omitempty" json:"row_major,omitempty"`

	// Data holds dense coefficients in logical row-by-row order.
	Data []float64 `yaml:"data,omitempty" json:"data,omitempty"`

	// Qualifiers applied to the variable's declared type.
	Alias     string `yaml:"alias,omitempty" json:"alias,omitempty"`
	Const     bool   `yaml:"const,omitempty" json:"const,omitempty"`
	Reference bool   `yaml:"reference,omitempty" json:"reference,omitempty"`

	// Block and vector block windows over an earlier matrix or array.
	Of          string `yaml:"of,omitempty" json:"of,omitempty"`
	StartRow    int    `yaml:"start_row,omitempty" json:"start_row,omitempty"`
	StartCol    int    `yaml:"start_col,omitempty" json:"start_col,omitempty"`
	Start       int    `yaml:"start,omitempty" json:"start,omitempty"`
	Size        int    `yaml:"size,omitempty" json:"size,omitempty"`
	DynamicSize bool   `yaml:"dynamic_size,omitempty" json:"dynamic_size,omitempty"`

	// Sparse storage.
	Entries      []Triplet `yaml:"entries,omitempty" json:"entries,omitempty"`
	Uncompressed bool      `yaml:"uncompressed,omitempty" json:"uncompressed,omitempty"`

	// Quaternion coefficients in storage order x, y, z, w.
	Coeffs []float64 `yaml:"coeffs,omitempty" json:"coeffs,omitempty"`
}

// Triplet is one stored sparse entry.
type Triplet struct {
	Row   int     `yaml:"row" json:"row"`
	Col   int     `yaml:"col" json:"col"`
	Value float64 `yaml:"value" json:"value"`
}

// Names returns value names in document order.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.Values))
	for _, v := range d.Values {
		names = append(names, v.Name)
	}
	return names
}

// Tree returns the document as a plain value tree for canonical encoding.
// Integral numbers become int64; any other number, NaN and infinities
// included, is spelled as its shortest round-tripping decimal string.
func (d *Document) Tree() (map[string]any, error) {
	raw, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return spellNumbers(tree).(map[string]any), nil
}

func spellNumbers(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case []any:
		for i := range x {
			x[i] = spellNumbers(x[i])
		}
	case map[string]any:
		for k := range x {
			x[k] = spellNumbers(x[k])
		}
	}
	return v
}

// applyDefaults fills omitted scalar and sentinel spellings.
func (d *Document) applyDefaults() {
	for i := range d.Values {
		v := &d.Values[i]
		if v.Scalar == "" {
			v.Scalar = DefaultScalar
		}
		if v.Sentinel == "" {
			v.Sentinel = DefaultSentinel
		}
	}
}

// Validate checks structural rules that do not depend on memory layout.
// Window bounds and owner compatibility are checked by Materialize.
func (d *Document) Validate() error {
	seen := make(map[string]Kind, len(d.Values))
	for i, v := range d.Values {
		if v.Name == "" {
			return fmt.Errorf("value %d: missing name", i)
		}
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("value %q: duplicate name", v.Name)
		}
		if _, ok := scalarKinds[v.Scalar]; !ok {
			return fmt.Errorf("value %q: unsupported scalar %q", v.Name, v.Scalar)
		}
		if !typedesc.IsDynamicSentinel(v.Sentinel) {
			return fmt.Errorf("value %q: %q is not a dynamic size spelling", v.Name, v.Sentinel)
		}
		if v.Rows < 0 || v.Cols < 0 || v.Size < 0 {
			return fmt.Errorf("value %q: negative dimension", v.Name)
		}

		switch v.Kind {
		case KindMatrix, KindArray:
			if len(v.Data) != v.Rows*v.Cols {
				return fmt.Errorf("value %q: %d coefficients for a %dx%d %s",
					v.Name, len(v.Data), v.Rows, v.Cols, v.Kind)
			}
		case KindBlock, KindVectorBlock:
			owner, ok := seen[v.Of]
			if !ok {
				return fmt.Errorf("value %q: window owner %q must be declared earlier", v.Name, v.Of)
			}
			if owner != KindMatrix && owner != KindArray {
				return fmt.Errorf("value %q: window owner %q is a %s", v.Name, v.Of, owner)
			}
		case KindSparse:
			for _, e := range v.Entries {
				if e.Row < 0 || e.Row >= v.Rows || e.Col < 0 || e.Col >= v.Cols {
					return fmt.Errorf("value %q: entry (%d,%d) outside %dx%d",
						v.Name, e.Row, e.Col, v.Rows, v.Cols)
				}
			}
		case KindQuaternion:
			if len(v.Coeffs) != 4 {
				return fmt.Errorf("value %q: quaternion needs 4 coefficients, got %d", v.Name, len(v.Coeffs))
			}
		default:
			return fmt.Errorf("value %q: unknown kind %q", v.Name, v.Kind)
		}
		seen[v.Name] = v.Kind
	}
	return nil
}
