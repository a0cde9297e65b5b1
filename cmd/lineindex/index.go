package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/lineindex/pkg/config"
	"github.com/praetorian-inc/lineindex/pkg/datastore"
	"github.com/praetorian-inc/lineindex/pkg/source"
	"github.com/praetorian-inc/lineindex/pkg/store"
	"github.com/praetorian-inc/lineindex/pkg/stream"
	"github.com/praetorian-inc/lineindex/pkg/types"
)

var (
	indexIncremental   bool
	indexWorkers       int
	indexStoreBlobs    bool
	indexIncludeHidden bool
	indexMaxFileSize   int64
	indexGit           bool
	indexRev           string
)

var indexCmd = &cobra.Command{
	Use:   "index <source|dir>...",
	Short: "Drain sources and record their line tables",
	Long: `Read each source to the end and report its size and line count.

Directories are walked recursively, honoring .gitignore. With --git each
argument is a repository and every blob in the tree at --rev is indexed.
With --datastore the
line tables are stored by BlobID so that later locate and offset queries can
skip reading the source.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexIncremental, "incremental", false, "Skip blobs already in the datastore")
	indexCmd.Flags().IntVar(&indexWorkers, "workers", 0, "Number of files indexed concurrently (default from config)")
	indexCmd.Flags().BoolVar(&indexStoreBlobs, "store-blobs", false, "Keep a copy of each source in the datastore")
	indexCmd.Flags().BoolVar(&indexIncludeHidden, "include-hidden", false, "Include hidden files and directories")
	indexCmd.Flags().Int64Var(&indexMaxFileSize, "max-file-size", 0, "Skip files larger than this many bytes (0 = no limit)")
	indexCmd.Flags().BoolVar(&indexGit, "git", false, "Treat arguments as git repositories and index the blobs of --rev")
	indexCmd.Flags().StringVar(&indexRev, "rev", "HEAD", "Git revision indexed with --git")
}

// indexResult describes one indexed source.
type indexResult struct {
	Source  string `json:"source" yaml:"source"`
	BlobID  string `json:"blob_id,omitempty" yaml:"blob_id,omitempty"`
	Size    int64  `json:"size" yaml:"size"`
	Lines   int    `json:"lines" yaml:"lines"`
	Skipped bool   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// indexer drains sources and optionally records them in a datastore.
type indexer struct {
	cfg         *config.Config
	ds          *datastore.Datastore // nil without --datastore
	incremental bool

	mu      sync.Mutex
	results []indexResult
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if indexWorkers > 0 {
		cfg.Workers = indexWorkers
	}
	if indexIncludeHidden {
		cfg.IncludeHidden = true
	}
	if (indexIncremental || indexStoreBlobs) && cfg.Datastore == "" {
		return fmt.Errorf("--incremental and --store-blobs require --datastore")
	}

	ix := &indexer{cfg: cfg, incremental: indexIncremental}
	if cfg.Datastore != "" {
		ds, err := datastore.Open(cfg.Datastore, datastore.Options{StoreBlobs: indexStoreBlobs})
		if err != nil {
			return fmt.Errorf("opening datastore: %w", err)
		}
		defer ds.Close()
		ix.ds = ds
	}

	ctx := context.Background()
	srcCfg := sourceConfig(cmd, cfg)
	srcCfg.MaxFileSize = indexMaxFileSize

	for _, arg := range args {
		if indexGit {
			debugf(cmd, "walking git tree of %s at %s", arg, indexRev)
			err := source.WalkGit(ctx, arg, indexRev, srcCfg, func(ctx context.Context, src *source.Source) error {
				return ix.index(cmd, src)
			})
			if err != nil {
				return fmt.Errorf("indexing %s: %w", arg, err)
			}
			continue
		}

		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			debugf(cmd, "walking %s with %d workers", arg, cfg.Workers)
			err := source.Walk(ctx, arg, srcCfg, func(ctx context.Context, src *source.Source) error {
				return ix.index(cmd, src)
			})
			if err != nil {
				return fmt.Errorf("indexing %s: %w", arg, err)
			}
			continue
		}

		src, err := source.Open(ctx, arg, srcCfg)
		if err != nil {
			return fmt.Errorf("opening source: %w", err)
		}
		err = ix.index(cmd, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("indexing %s: %w", arg, err)
		}
	}

	results := ix.results
	slices.SortFunc(results, func(a, b indexResult) int { return strings.Compare(a.Source, b.Source) })

	skipped := 0
	for _, r := range results {
		if r.Skipped {
			skipped++
		}
	}
	status(cmd, "Indexed %d sources (%d skipped)", len(results)-skipped, skipped)

	return newPrinter(cmd, cfg).emit(results, func(w io.Writer, s *styles) {
		for _, r := range results {
			fmt.Fprintf(w, "%s\n", s.name.Sprint(r.Source))
			if r.Skipped {
				fmt.Fprintf(w, "  %s %s\n", s.heading.Sprint("Skipped:"), s.muted.Sprint("already indexed"))
			} else {
				fmt.Fprintf(w, "  %s %d\n", s.heading.Sprint("Lines:"), r.Lines)
				fmt.Fprintf(w, "  %s %d\n", s.heading.Sprint("Size:"), r.Size)
			}
			if r.BlobID != "" {
				fmt.Fprintf(w, "  %s %s\n", s.heading.Sprint("Blob:"), s.offset.Sprint(r.BlobID))
			}
		}
	})
}

// index drains src and records its table. The BlobID comes from the source
// when known up front, and is otherwise hashed while reading: directly when
// the size is known, through a datastore spool when it is not.
func (ix *indexer) index(cmd *cobra.Command, src *source.Source) error {
	if src.ID != nil && ix.incremental {
		exists, err := ix.ds.Store.IndexExists(*src.ID)
		if err != nil {
			return fmt.Errorf("checking index: %w", err)
		}
		if exists {
			return ix.skip(src, *src.ID)
		}
	}

	var (
		r      io.Reader = src
		hasher *types.BlobHasher
		spool  *datastore.Spool
	)
	switch {
	case ix.ds != nil && (ix.ds.BlobStore != nil || (src.ID == nil && src.Size < 0)):
		var err error
		if spool, err = ix.ds.NewSpool(src); err != nil {
			return err
		}
		r = spool
	case src.ID == nil && src.Size >= 0:
		hasher = types.NewBlobHasher(src.Size)
		r = io.TeeReader(src, hasher)
	}

	s := stream.New(r, streamOptions(ix.cfg)...)
	table, err := s.Table()
	if err != nil {
		if spool != nil {
			spool.Discard()
		}
		return fmt.Errorf("reading %s: %w", src.Name, err)
	}
	debugf(cmd, "%s: %d lines, %d bytes, %d scan steps", src.Name, table.LineCount(), table.Len(), s.Stats().ScanSteps)

	var id *types.BlobID
	switch {
	case spool != nil:
		sum, err := spool.Finish()
		if err != nil {
			return err
		}
		id = &sum
	case hasher != nil:
		sum, err := hasher.Sum()
		if err != nil {
			return err
		}
		id = &sum
	default:
		id = src.ID
	}

	res := indexResult{Source: src.Name, Size: table.Len(), Lines: table.LineCount()}
	if id != nil {
		res.BlobID = id.Hex()
	}

	if ix.ds != nil {
		if ix.incremental && src.ID == nil {
			exists, err := ix.ds.Store.IndexExists(*id)
			if err != nil {
				return fmt.Errorf("checking index: %w", err)
			}
			if exists {
				return ix.skip(src, *id)
			}
		}
		if err := ix.ds.Store.PutIndex(store.NewIndexRecord(*id, table)); err != nil {
			return fmt.Errorf("storing index: %w", err)
		}
		if err := ix.addProvenance(src, *id); err != nil {
			return err
		}
	}

	ix.record(res)
	return nil
}

// skip records src as already indexed. Its provenance is still added.
func (ix *indexer) skip(src *source.Source, id types.BlobID) error {
	if err := ix.addProvenance(src, id); err != nil {
		return err
	}
	ix.record(indexResult{Source: src.Name, BlobID: id.Hex(), Skipped: true})
	return nil
}

func (ix *indexer) addProvenance(src *source.Source, id types.BlobID) error {
	if src.Provenance == nil {
		return nil
	}
	if err := ix.ds.Store.AddProvenance(id, src.Provenance); err != nil {
		return fmt.Errorf("storing provenance: %w", err)
	}
	return nil
}

func (ix *indexer) record(r indexResult) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.results = append(ix.results, r)
}
