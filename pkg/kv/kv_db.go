// Package kv persists road map definitions in a pebble database. Values are binary
// encoded and zstd compressed.
package kv

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/concurrent"
	"github.com/JensKlimke/SimMap-sub000/pkg/roadmap"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/exp/slices"
)

const (
	mapPrefix = "map/"
	indexKey  = "index/maps"
)

type MapStore struct {
	db      *pebble.DB
	mu      sync.Mutex
	logger  *slog.Logger
	workers int
}

type options struct {
	fs      vfs.FS
	logger  *slog.Logger
	workers int
}

type Option func(*options)

// WithFS opens the database on fs, e.g. vfs.NewMem().
func WithFS(fs vfs.FS) Option {
	return func(o *options) { o.fs = fs }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithWorkers sets the number of workers compressing definitions in PutAll.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// Open opens or creates the store at path.
func Open(path string, opts ...Option) (*MapStore, error) {
	o := options{logger: slog.Default(), workers: 4}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := pebble.Open(path, &pebble.Options{FS: o.fs})
	if err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrInternalServerError, "cannot open store %s", path)
	}
	o.logger.Debug("store opened", slog.String("path", path))
	return &MapStore{db: db, logger: o.logger, workers: o.workers}, nil
}

// NewMapStore wraps an open database.
func NewMapStore(db *pebble.DB, logger *slog.Logger) *MapStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MapStore{db: db, logger: logger, workers: 4}
}

func (k *MapStore) Close() error {
	return k.db.Close()
}

func mapKey(name string) []byte {
	return []byte(mapPrefix + name)
}

// Put stores def under its name, replacing a stored definition of the same name.
func (k *MapStore) Put(def *roadmap.Definition) error {
	if def == nil || def.Name == "" {
		return domain.WrapErrorf(nil, domain.ErrInvalidArgument, "map definition needs a name")
	}

	val, err := pack(*def)
	if err != nil {
		return err
	}
	return k.commit([]concurrent.CompressResult{{Key: def.Name, Value: val}}, nil)
}

// PutAll stores all definitions in one batch. The definitions are compressed in a worker
// pool, bar (optional) reports every compressed definition.
func (k *MapStore) PutAll(defs []*roadmap.Definition, bar *progressbar.ProgressBar) error {
	jobs := make([]concurrent.CompressJobItem, 0, len(defs))
	for _, def := range defs {
		if def == nil || def.Name == "" {
			return domain.WrapErrorf(nil, domain.ErrInvalidArgument, "map definition needs a name")
		}
		raw, err := Encode(*def)
		if err != nil {
			return err
		}
		jobs = append(jobs, concurrent.CompressJobItem{Key: def.Name, Value: raw})
	}

	workers := concurrent.NewWorkerPool[concurrent.CompressJobItem, concurrent.CompressResult](k.workers, len(jobs))
	for _, job := range jobs {
		workers.AddJob(job)
	}
	workers.Close()

	workers.Start(func(job concurrent.CompressJobItem) concurrent.CompressResult {
		val, err := Compress(job.Value)
		if bar != nil {
			_ = bar.Add(1)
		}
		return concurrent.CompressResult{Key: job.Key, Value: val, Err: err}
	})
	workers.Wait()

	results := make([]concurrent.CompressResult, 0, len(defs))
	for r := range workers.CollectResults() {
		if r.Err != nil {
			return r.Err
		}
		results = append(results, r)
	}
	return k.commit(results, nil)
}

// commit writes the values and deletes the names in one batch together with the updated
// name index.
func (k *MapStore) commit(values []concurrent.CompressResult, deleted []string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	names, err := k.names()
	if err != nil {
		return err
	}

	b := k.db.NewBatch()
	defer b.Close()

	for _, v := range values {
		if err := b.Set(mapKey(v.Key), v.Value, nil); err != nil {
			return domain.WrapErrorf(err, domain.ErrInternalServerError, "cannot store map %s", v.Key)
		}
		if !slices.Contains(names, v.Key) {
			names = append(names, v.Key)
		}
	}
	for _, name := range deleted {
		if err := b.Delete(mapKey(name), nil); err != nil {
			return domain.WrapErrorf(err, domain.ErrInternalServerError, "cannot delete map %s", name)
		}
		names = slices.DeleteFunc(names, func(n string) bool { return n == name })
	}
	sort.Strings(names)

	index, err := pack(names)
	if err != nil {
		return err
	}
	if err := b.Set([]byte(indexKey), index, nil); err != nil {
		return domain.WrapErrorf(err, domain.ErrInternalServerError, "cannot store map index")
	}

	if err := b.Commit(pebble.Sync); err != nil {
		return domain.WrapErrorf(err, domain.ErrInternalServerError, "cannot commit maps")
	}
	k.logger.Info("store updated", slog.Int("stored", len(values)), slog.Int("deleted", len(deleted)))
	return nil
}

func (k *MapStore) get(key []byte) ([]byte, error) {
	val, closer, err := k.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, domain.WrapErrorf(err, domain.ErrNotFound, "key %s not stored", key)
	}
	if err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrInternalServerError, "cannot read key %s", key)
	}
	defer closer.Close()

	return append([]byte(nil), val...), nil
}

// Get loads the definition stored under name.
func (k *MapStore) Get(name string) (*roadmap.Definition, error) {
	val, err := k.get(mapKey(name))
	if err != nil {
		return nil, err
	}

	def, err := unpack[roadmap.Definition](val)
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// List returns the sorted names of all stored maps.
func (k *MapStore) List() ([]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.names()
}

func (k *MapStore) names() ([]string, error) {
	val, err := k.get([]byte(indexKey))
	if domain.Is(err, domain.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return unpack[[]string](val)
}

// Delete removes the map name from the store.
func (k *MapStore) Delete(name string) error {
	names, err := k.List()
	if err != nil {
		return err
	}
	if !slices.Contains(names, name) {
		return domain.WrapErrorf(nil, domain.ErrNotFound, "map %s not stored", name)
	}
	return k.commit(nil, []string{name})
}
