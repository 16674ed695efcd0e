// Package core defines the resource pack storage abstraction shared by the
// pack facade and its infra drivers.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete pack storage backend.
type Driver string

const (
	// DriverFilesystem reads an unpacked pack directory.
	DriverFilesystem Driver = "fs"
	// DriverS3 reads a pack mirrored to an S3 / MinIO bucket.
	DriverS3 Driver = "s3"
	// DriverMemory holds pack files in memory (tests, generated packs).
	DriverMemory Driver = "memory"
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string
}

// Info describes one stored pack file.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Store is a flat key space of pack files. Keys use forward slashes, e.g.
// "assets/minecraft/colormaps/grass.png".
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	// List returns files whose key has prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

var (
	// ErrNotFound is returned by Get and Head for missing keys.
	ErrNotFound = errors.New("pack: file not found")
	// ErrExists is returned by Put when the key is taken.
	ErrExists = errors.New("pack: file already exists")
)
