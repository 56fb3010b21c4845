// Package timers stores the timer collection as a single JSON document in an
// object store. Every mutation reads the whole document, changes it in
// memory and writes it back.
//
// Concurrent mutations race: both read before either writes and the later
// write wins. With ConditionalWrites the version read is passed along with
// the write, and a write made after reading no document is create-only, so
// creating the empty document cannot wipe a timer appended in between. Both
// only help when the backend enforces them (see objectstore).
package timers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"slices"

	"github.com/dmitrijs2005/countdown/internal/common"
	"github.com/dmitrijs2005/countdown/internal/logging"
	"github.com/dmitrijs2005/countdown/internal/server/models"
	"github.com/dmitrijs2005/countdown/internal/server/objectstore"
)

// Options tune how the document is written.
type Options struct {
	PublicRead        bool
	ConditionalWrites bool
}

// DocumentRepository implements Repository on top of an objectstore.Store.
type DocumentRepository struct {
	store  objectstore.Store
	key    string
	opts   Options
	logger logging.Logger
}

func NewDocumentRepository(store objectstore.Store, key string, opts Options, logger logging.Logger) *DocumentRepository {
	return &DocumentRepository{
		store:  store,
		key:    key,
		opts:   opts,
		logger: logger.With("module", "timers_repository", "key", key),
	}
}

func (r *DocumentRepository) Initialize(ctx context.Context) error {
	r.logger.Info(ctx, "initializing timers storage")

	keys, err := r.store.List(ctx, r.prefix())
	if err != nil {
		r.logger.Error(ctx, "listing storage failed", "error", err)
		return ctx.Err()
	}

	if slices.Contains(keys, r.key) {
		r.logger.Info(ctx, "timers document already exists")
		return nil
	}

	if _, err := r.save(ctx, nil, ""); err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			r.logger.Info(ctx, "timers document created concurrently")
			return nil
		}
		r.logger.Error(ctx, "creating timers document failed", "error", err)
		return ctx.Err()
	}

	r.logger.Info(ctx, "timers storage initialized")
	return nil
}

func (r *DocumentRepository) LoadAll(ctx context.Context) ([]models.Timer, error) {
	timers, _, err := r.fetch(ctx)
	switch {
	case err == nil:
		return timers, nil

	case errors.Is(err, common.ErrNotFound):
		r.logger.Info(ctx, "timers document missing, writing an empty one")
		_, err := r.save(ctx, nil, "")
		switch {
		case errors.Is(err, common.ErrVersionConflict):
			// created by someone else since the read
			if timers, _, err := r.fetch(ctx); err == nil {
				return timers, nil
			}
		case err != nil:
			r.logger.Warn(ctx, "writing empty timers document failed", "error", err)
		}

	default:
		// a document we could not read is left untouched
		r.logger.Warn(ctx, "reading timers failed, returning an empty list", "error", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []models.Timer{}, nil
}

func (r *DocumentRepository) Get(ctx context.Context, id string) (*models.Timer, error) {
	timers, _, err := r.loadForUpdate(ctx)
	if err != nil {
		return nil, err
	}

	i := indexOf(timers, id)
	if i < 0 {
		return nil, fmt.Errorf("timer %s: %w", id, common.ErrNotFound)
	}
	return &timers[i], nil
}

func (r *DocumentRepository) Append(ctx context.Context, timer models.Timer) error {
	timers, version, err := r.loadForUpdate(ctx)
	if err != nil {
		return err
	}

	if indexOf(timers, timer.ID) >= 0 {
		return fmt.Errorf("timer %s: %w", timer.ID, common.ErrAlreadyExists)
	}

	timers = append(timers, timer)

	_, err = r.save(ctx, timers, version)
	return err
}

func (r *DocumentRepository) Replace(ctx context.Context, id string, timer models.Timer) error {
	timers, version, err := r.loadForUpdate(ctx)
	if err != nil {
		return err
	}

	i := indexOf(timers, id)
	if i < 0 {
		return fmt.Errorf("timer %s: %w", id, common.ErrNotFound)
	}
	timers[i] = timer

	_, err = r.save(ctx, timers, version)
	return err
}

// loadForUpdate reads the collection for a mutation. A missing document is
// an empty collection with no version; every other failure is returned.
func (r *DocumentRepository) loadForUpdate(ctx context.Context) ([]models.Timer, string, error) {
	timers, version, err := r.fetch(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return []models.Timer{}, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return timers, version, nil
}

func (r *DocumentRepository) fetch(ctx context.Context) ([]models.Timer, string, error) {
	obj, err := r.store.Fetch(ctx, r.key)
	if err != nil {
		return nil, "", err
	}

	var timers []models.Timer
	if err := json.Unmarshal(obj.Data, &timers); err != nil {
		return nil, "", fmt.Errorf("%w: %s: %w", common.ErrCorruptDocument, r.key, err)
	}
	if timers == nil {
		timers = []models.Timer{}
	}

	r.logger.Debug(ctx, "timers loaded", "count", len(timers), "version", obj.Version)
	return timers, obj.Version, nil
}

func (r *DocumentRepository) save(ctx context.Context, timers []models.Timer, previousVersion string) (*objectstore.WriteResult, error) {
	if timers == nil {
		timers = []models.Timer{}
	}

	data, err := json.Marshal(timers)
	if err != nil {
		return nil, fmt.Errorf("encode timers: %w", err)
	}

	opts := objectstore.WriteOptions{
		PublicRead:  r.opts.PublicRead,
		ContentType: common.JSONContentType,
	}
	if r.opts.ConditionalWrites {
		opts.PreviousVersion = previousVersion
		opts.IfAbsent = previousVersion == ""
	}

	res, err := r.store.Write(ctx, r.key, data, opts)
	if err != nil {
		return nil, err
	}

	r.logger.Info(ctx, "timers document written", "count", len(timers), "location", res.Location)
	return res, nil
}

// prefix is the directory part of the key, used to list candidate keys.
func (r *DocumentRepository) prefix() string {
	dir := path.Dir(r.key)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir + "/"
}

func indexOf(timers []models.Timer, id string) int {
	return slices.IndexFunc(timers, func(t models.Timer) bool { return t.ID == id })
}
