package cli

import (
	"context"
	"fmt"

	"github.com/roach88/eigenview/internal/host"
	"github.com/roach88/eigenview/internal/printer"
	"github.com/roach88/eigenview/internal/snapshot"
	"github.com/roach88/eigenview/internal/store"
)

// session is a materialized snapshot with a dispatcher over it.
type session struct {
	source     string
	frame      *snapshot.Frame
	dispatcher *printer.Dispatcher
}

// openSession loads a snapshot from the store when --db is set, otherwise
// from the file at source, and materializes it.
func openSession(ctx context.Context, opts *RootOptions, f *OutputFormatter, source string) (*session, error) {
	doc, code, err := loadDocument(ctx, opts, source)
	if err != nil {
		return nil, f.Fail(code, fmt.Sprintf("load snapshot %q", source), err)
	}

	frame, err := snapshot.Materialize(doc)
	if err != nil {
		return nil, f.Fail(ErrCodeMaterialize, "materialize snapshot", err)
	}
	f.Verbosef("Loaded %d value(s) from %s", len(frame.Names()), source)
	opts.Logger.Debug("snapshot materialized", "source", source, "values", len(frame.Names()))

	return &session{
		source:     source,
		frame:      frame,
		dispatcher: printer.NewDispatcher(printer.DefaultRegistry(), frame.Session()),
	}, nil
}

// loadDocument returns the document and, on failure, the CLI error code.
func loadDocument(ctx context.Context, opts *RootOptions, source string) (*snapshot.Document, string, error) {
	if opts.Database == "" {
		doc, err := snapshot.Load(source)
		return doc, ErrCodeSnapshotLoad, err
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, ErrCodeStore, err
	}
	defer st.Close()

	rec, err := st.GetSnapshot(ctx, source)
	if err != nil {
		return nil, ErrCodeStore, err
	}
	doc, err := rec.Document()
	return doc, ErrCodeSnapshotLoad, err
}

// names returns the requested value names, or every name in the frame.
func (s *session) names(requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	return s.frame.Names()
}

func (s *session) lookup(name string) (host.Value, bool) {
	return s.frame.Lookup(name)
}

// openStore opens the --db store, reporting failures through f.
func openStore(opts *RootOptions, f *OutputFormatter) (*store.Store, error) {
	if opts.Database == "" {
		return nil, f.Fail(ErrCodeNoDatabase, "--db or $"+EnvDatabase+" is required", nil)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, f.Fail(ErrCodeStore, "open snapshot store", err)
	}
	return st, nil
}
