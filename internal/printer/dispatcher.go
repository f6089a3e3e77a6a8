package printer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/eigenview/internal/host"
)

// ErrNoMatch indicates that no registry rule matched the value's type.
var ErrNoMatch = errors.New("printer: no matching printer")

// Dispatcher selects and builds the printer for a value.
type Dispatcher struct {
	registry *Registry
	session  host.Session
}

// NewDispatcher creates a dispatcher over an already-built registry. The
// session is used to look up owning types of block views.
func NewDispatcher(registry *Registry, session host.Session) *Dispatcher {
	return &Dispatcher{registry: registry, session: session}
}

// Classify returns the family selected for v, without building a printer.
func (d *Dispatcher) Classify(v host.Value) (Family, string, bool) {
	t := host.Stripped(v.Type())
	if t == nil {
		return 0, "", false
	}
	tag := t.Tag()
	if tag == "" {
		return 0, "", false
	}
	family, ok := d.registry.Classify(tag)
	return family, tag, ok
}

// Resolve classifies v and builds its printer. The returned error is
// ErrNoMatch when no rule applies, or a *typedesc.Error describing why
// decoding failed.
func (d *Dispatcher) Resolve(v host.Value) (Printer, error) {
	family, tag, ok := d.Classify(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, v.Type().Name())
	}

	switch family {
	case FamilyQuaternion:
		return newQuaternionPrinter(v)
	case FamilyMatrix, FamilyArray:
		return newDensePrinter(v, family)
	case FamilyBlock, FamilyVectorBlock:
		return newBlockPrinter(v, d.session, family)
	case FamilySparseMatrix:
		return newSparsePrinter(v)
	default:
		return nil, fmt.Errorf("%w: family %s for %s", ErrNoMatch, family, tag)
	}
}

// Lookup is the host-facing entry point: it returns the printer for v, or
// nil when no printer applies. Decode failures are logged and reported as
// nil so that one bad value never disturbs the display of others.
func (d *Dispatcher) Lookup(v host.Value) Printer {
	p, err := d.Resolve(v)
	if err != nil {
		if !errors.Is(err, ErrNoMatch) {
			slog.Debug("printer resolution failed",
				"type", v.Type().Name(),
				"error", err,
			)
		}
		return nil
	}
	slog.Debug("printer selected",
		"type", v.Type().Name(),
		"family", p.Family().String(),
	)
	return p
}
