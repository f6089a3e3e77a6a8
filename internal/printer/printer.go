package printer

import (
	"fmt"

	"github.com/roach88/eigenview/internal/host"
	"github.com/roach88/eigenview/internal/layout"
	"github.com/roach88/eigenview/internal/render"
	"github.com/roach88/eigenview/internal/typedesc"
)

// Printer renders one value. It is built for a single display request.
type Printer interface {
	// Family is the container kind the printer was selected for.
	Family() Family

	// Render returns the display text: a grid document for dense
	// containers, a one-line summary for sparse matrices and quaternions.
	Render() (string, error)

	// Children returns a fresh iterator over the value's entries.
	Children() (layout.Iterator, error)
}

// GridPrinter is implemented by printers whose Render output is a grid.
type GridPrinter interface {
	Printer
	Grid() (*render.Grid, error)
}

// DensePrinter prints matrices, arrays and block views.
type DensePrinter struct {
	family  Family
	storage layout.DenseStorage
}

var _ GridPrinter = (*DensePrinter)(nil)

func newDensePrinter(v host.Value, family Family) (*DensePrinter, error) {
	desc, err := typedesc.Parse(host.Stripped(v.Type()).Tag())
	if err != nil {
		return nil, err
	}
	if err := typedesc.CheckScalar(desc); err != nil {
		return nil, err
	}
	shape, err := typedesc.ParseDenseShape(desc)
	if err != nil {
		return nil, err
	}
	storage, err := layout.DenseFromValue(v, shape)
	if err != nil {
		return nil, err
	}
	return &DensePrinter{family: family, storage: storage}, nil
}

func newBlockPrinter(v host.Value, session host.Session, family Family) (*DensePrinter, error) {
	owningName, err := layout.OwningTypeName(host.Stripped(v.Type()).Name())
	if err != nil {
		return nil, err
	}
	desc, err := typedesc.Parse(owningName)
	if err != nil {
		return nil, err
	}
	if err := typedesc.CheckScalar(desc); err != nil {
		return nil, err
	}
	storage, err := layout.BlockFromValue(v, session, family == FamilyVectorBlock)
	if err != nil {
		return nil, err
	}
	return &DensePrinter{family: family, storage: storage}, nil
}

// Family implements Printer.
func (p *DensePrinter) Family() Family { return p.family }

// Dims returns the resolved logical shape.
func (p *DensePrinter) Dims() (rows, cols int) {
	return p.storage.Rows, p.storage.Cols
}

// RowMajor reports the physical storage order.
func (p *DensePrinter) RowMajor() bool { return p.storage.RowMajor }

// Grid walks storage and assembles the logical grid.
func (p *DensePrinter) Grid() (*render.Grid, error) {
	return render.Collect(p.storage.Iter(), p.storage.Rows, p.storage.Cols)
}

// Render implements Printer with the canonical JSON grid document.
func (p *DensePrinter) Render() (string, error) {
	g, err := p.Grid()
	if err != nil {
		return "", err
	}
	return g.JSON()
}

// Children implements Printer.
func (p *DensePrinter) Children() (layout.Iterator, error) {
	return p.storage.Iter(), nil
}

// SparsePrinter prints a one-line summary of a sparse matrix and exposes
// every logical cell as a child.
type SparsePrinter struct {
	scalar  string
	storage *layout.SparseStorage
}

func newSparsePrinter(v host.Value) (*SparsePrinter, error) {
	desc, err := typedesc.Parse(host.Stripped(v.Type()).Tag())
	if err != nil {
		return nil, err
	}
	if err := typedesc.CheckScalar(desc); err != nil {
		return nil, err
	}
	rowMajor, err := typedesc.ParseSparseOptions(desc)
	if err != nil {
		return nil, err
	}
	scalar, err := layout.ScalarType(v)
	if err != nil {
		return nil, err
	}
	storage, err := layout.SparseFromValue(v, rowMajor)
	if err != nil {
		return nil, err
	}
	return &SparsePrinter{scalar: scalar.Name(), storage: storage}, nil
}

// Family implements Printer.
func (p *SparsePrinter) Family() Family { return FamilySparseMatrix }

// Storage exposes the decoded storage for direct lookups.
func (p *SparsePrinter) Storage() *layout.SparseStorage { return p.storage }

// Render implements Printer:
//
//	Eigen::SparseMatrix<double>, 3 x 4, column major, compressed
func (p *SparsePrinter) Render() (string, error) {
	order := "column"
	if p.storage.RowMajor {
		order = "row"
	}
	return fmt.Sprintf("Eigen::SparseMatrix<%s>, %d x %d, %s major, %s",
		p.scalar, p.storage.Rows(), p.storage.Cols(), order, p.storage.Status()), nil
}

// Children implements Printer.
func (p *SparsePrinter) Children() (layout.Iterator, error) {
	return p.storage.Iter(), nil
}

// QuaternionPrinter prints a quaternion's scalar type and data pointer and
// exposes its four coefficients.
type QuaternionPrinter struct {
	scalar string
	data   host.Value
}

func newQuaternionPrinter(v host.Value) (*QuaternionPrinter, error) {
	desc, err := typedesc.Parse(host.Stripped(v.Type()).Tag())
	if err != nil {
		return nil, err
	}
	if err := typedesc.CheckScalar(desc); err != nil {
		return nil, err
	}
	scalar, err := layout.ScalarType(v)
	if err != nil {
		return nil, err
	}
	data, err := layout.QuaternionData(v)
	if err != nil {
		return nil, err
	}
	return &QuaternionPrinter{scalar: scalar.Name(), data: data}, nil
}

// Family implements Printer.
func (p *QuaternionPrinter) Family() Family { return FamilyQuaternion }

// Render implements Printer:
//
//	Eigen::Quaternion<double> (data ptr: 0x10040)
func (p *QuaternionPrinter) Render() (string, error) {
	addr, err := p.data.Pointer()
	if err != nil {
		return "", typedesc.NewHostError("read data pointer", err)
	}
	return fmt.Sprintf("Eigen::Quaternion<%s> (data ptr: 0x%x)", p.scalar, addr), nil
}

// Children implements Printer.
func (p *QuaternionPrinter) Children() (layout.Iterator, error) {
	return layout.QuaternionIter(p.data), nil
}
