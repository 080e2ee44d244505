package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"femtrans/internal/snapshot"

	"go.uber.org/zap"
)

const (
	documentPrefix = "models/"
	documentSuffix = ".json"
	contentJSON    = "application/json"
)

// Archive stores exported snapshot documents as write-once objects keyed
// models/<model>/<run-id>.json.
type Archive struct {
	store  Store
	logger *zap.Logger
}

// NewArchive wraps store. A nil logger is replaced by a no-op logger.
func NewArchive(store Store, logger *zap.Logger) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archive{store: store, logger: logger}
}

// DocumentKey returns the object key for a model run.
func DocumentKey(model, runID string) string {
	return path.Join(strings.TrimSuffix(documentPrefix, "/"), model, runID+documentSuffix)
}

// Save writes doc under its model and run id.
func (a *Archive) Save(ctx context.Context, doc *snapshot.Document) (Object, error) {
	if doc == nil || doc.Model == "" || doc.RunID == "" {
		return Object{}, errors.New("archive: document needs a model and a run id")
	}
	if strings.Contains(doc.Model, "/") {
		return Object{}, fmt.Errorf("%w: model name %q contains '/'", ErrInvalidKey, doc.Model)
	}
	raw, err := doc.Marshal()
	if err != nil {
		return Object{}, fmt.Errorf("encode %s: %w", doc.Model, err)
	}
	key := DocumentKey(doc.Model, doc.RunID)
	obj, err := a.store.Put(ctx, key, bytes.NewReader(raw), PutOptions{
		ContentType: contentJSON,
		Metadata: map[string]string{
			"run-id":   doc.RunID,
			"finished": strconv.FormatBool(doc.Finished),
		},
	})
	if err != nil {
		return Object{}, err
	}
	a.logger.Debug("document archived",
		zap.String("key", key),
		zap.String("driver", string(a.store.Driver())),
		zap.Int64("size", obj.Size))
	return obj, nil
}

// List returns the archived documents of model in run id order.
func (a *Archive) List(ctx context.Context, model string) ([]Object, error) {
	return a.store.List(ctx, documentPrefix+model+"/")
}

// Load reads the document stored under key.
func (a *Archive) Load(ctx context.Context, key string) (*snapshot.Document, Object, error) {
	obj, rc, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, Object{}, err
	}
	defer func() { _ = rc.Close() }()
	doc, err := snapshot.Read(rc)
	if err != nil {
		return nil, Object{}, fmt.Errorf("%s: %w", key, err)
	}
	return doc, obj, nil
}

// Latest loads the document with the greatest run id for model.
func (a *Archive) Latest(ctx context.Context, model string) (*snapshot.Document, Object, error) {
	objs, err := a.List(ctx, model)
	if err != nil {
		return nil, Object{}, err
	}
	if len(objs) == 0 {
		return nil, Object{}, fmt.Errorf("model %s: %w", model, ErrNotFound)
	}
	return a.Load(ctx, objs[len(objs)-1].Key)
}
