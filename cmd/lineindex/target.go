package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/lineindex/pkg/config"
	"github.com/praetorian-inc/lineindex/pkg/datastore"
	"github.com/praetorian-inc/lineindex/pkg/source"
	"github.com/praetorian-inc/lineindex/pkg/store"
	"github.com/praetorian-inc/lineindex/pkg/stream"
	"github.com/praetorian-inc/lineindex/pkg/types"
)

// blobPrefix names content by BlobID in the datastore.
const blobPrefix = "blob:"

// target is a source ready to answer position queries.
type target struct {
	name    string
	locator stream.Locator
	stream  *stream.Stream // nil when answered from a stored index
	closers []func() error
}

func (t *target) Close() error {
	var first error
	for i := len(t.closers) - 1; i >= 0; i-- {
		if err := t.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// table returns the complete line table, draining the stream if needed.
func (t *target) table() (*stream.Table, error) {
	if t.stream != nil {
		return t.stream.Table()
	}
	return t.locator.(*stream.Table), nil
}

// openTarget opens spec for queries. With a datastore configured, a source
// whose BlobID is known before reading is answered from its stored index
// when one exists.
func openTarget(ctx context.Context, cmd *cobra.Command, cfg *config.Config, spec string) (*target, error) {
	if strings.HasPrefix(spec, blobPrefix) {
		return openBlobTarget(cmd, cfg, strings.TrimPrefix(spec, blobPrefix))
	}

	src, err := source.Open(ctx, spec, sourceConfig(cmd, cfg))
	if err != nil {
		return nil, err
	}

	if src.ID != nil && cfg.Datastore != "" {
		ds, err := datastore.Open(cfg.Datastore, datastore.Options{})
		if err != nil {
			src.Close()
			return nil, err
		}
		table, err := storedTable(ds.Store, *src.ID)
		switch {
		case err == nil:
			debugf(cmd, "using stored index for %s (%s)", src.Name, src.ID)
			src.Close()
			return &target{name: src.Name, locator: table, closers: []func() error{ds.Close}}, nil
		case !errors.Is(err, store.ErrNotFound):
			src.Close()
			ds.Close()
			return nil, err
		}
		ds.Close()
	}

	s := stream.New(src, streamOptions(cfg)...)
	return &target{name: src.Name, locator: s, stream: s, closers: []func() error{s.Close}}, nil
}

func openBlobTarget(cmd *cobra.Command, cfg *config.Config, hexID string) (*target, error) {
	if cfg.Datastore == "" {
		return nil, fmt.Errorf("%s sources require --datastore", blobPrefix)
	}
	id, err := types.ParseBlobID(hexID)
	if err != nil {
		return nil, err
	}

	ds, err := datastore.Open(cfg.Datastore, datastore.Options{})
	if err != nil {
		return nil, err
	}
	name := blobPrefix + id.Hex()

	table, err := storedTable(ds.Store, id)
	if err == nil {
		debugf(cmd, "using stored index for %s", name)
		return &target{name: name, locator: table, closers: []func() error{ds.Close}}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		ds.Close()
		return nil, err
	}

	if ds.BlobStore == nil || !ds.BlobStore.Exists(id) {
		ds.Close()
		return nil, fmt.Errorf("blob %s not found in datastore %s", id, cfg.Datastore)
	}
	f, err := ds.BlobStore.Open(id)
	if err != nil {
		ds.Close()
		return nil, err
	}
	s := stream.New(f, streamOptions(cfg)...)
	return &target{name: name, locator: s, stream: s, closers: []func() error{ds.Close, s.Close}}, nil
}

func storedTable(st store.Store, id types.BlobID) (*stream.Table, error) {
	rec, err := st.GetIndex(id)
	if err != nil {
		return nil, err
	}
	return rec.Table()
}
