// Package storage provides the dual-backend persistence layer: opaque blobs
// in an object store and small session records in a key-value table, with a
// local (MinIO + SQLite) and a cloud (S3 + DynamoDB) implementation of each.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/rfpforge/rfpforge/internal/config"
	"github.com/rfpforge/rfpforge/internal/domain"
)

// ObjectStore puts and gets opaque byte blobs under a key. Puts are
// idempotent overwrites. A missing key surfaces as domain.ErrNotFound; any
// other failure as *StorageError.
type ObjectStore interface {
	PutBlob(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error
	GetBlob(ctx context.Context, key string) ([]byte, error)
}

// SessionStore puts and gets session snapshots keyed by session id.
// PutSession is a full-record replace; callers read-modify-write to keep
// prior fields. A missing session surfaces as domain.ErrSessionNotFound.
type SessionStore interface {
	PutSession(ctx context.Context, sessionID string, snap *domain.Snapshot) error
	GetSession(ctx context.Context, sessionID string) (*domain.Snapshot, error)
}

// Facade unifies the object and session stores behind one value. The
// local/cloud binding is chosen at construction and fixed for the process
// lifetime. The facade never retries; retry policy belongs to callers.
type Facade struct {
	Objects  ObjectStore
	Sessions SessionStore

	env    config.Environment
	logger *zap.Logger
}

// New binds the facade to local or cloud backends based on the resolved
// environment, bootstrapping the bucket and table idempotently.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Facade, error) {
	f := &Facade{env: cfg.Environment, logger: logger}

	switch cfg.Environment {
	case config.EnvCloud:
		objects, sessions, err := newCloudBackends(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("bind cloud storage: %w", err)
		}
		f.Objects, f.Sessions = objects, sessions
		logger.Info("storage bound to cloud backends",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("table", cfg.Storage.Table),
		)
	default:
		objects, err := NewMinioObjectStore(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("bind local object store: %w", err)
		}
		sessions, err := NewSQLiteSessionStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("bind local session store: %w", err)
		}
		f.Objects, f.Sessions = objects, sessions
		logger.Info("storage bound to local backends",
			zap.String("minio_endpoint", cfg.Storage.MinioEndpoint),
			zap.String("sqlite_path", cfg.Storage.SQLitePath),
		)
	}

	return f, nil
}

// Environment reports which backend pair the facade is bound to.
func (f *Facade) Environment() config.Environment { return f.env }

// Close releases any closable backend resources.
func (f *Facade) Close() error {
	var err error
	if c, ok := f.Sessions.(io.Closer); ok {
		err = c.Close()
	}
	if c, ok := f.Objects.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// BlobKey builds the canonical object key for a session artifact:
// sessions/{sessionID}/{category}_{YYYYMMDD_HHMMSS}. External tooling
// locates session artifacts by this convention.
func BlobKey(sessionID, category string, t time.Time) string {
	return fmt.Sprintf("sessions/%s/%s_%s", sessionID, category, t.Format("20060102_150405"))
}
