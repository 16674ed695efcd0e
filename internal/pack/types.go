// Package pack re-exports the pack storage abstraction and constructs its
// drivers. Packages outside the pack tree depend on pack.Store only.
package pack

import (
	"tintcore/internal/pack/core"
)

type (
	// Driver identifies a pack backend driver.
	Driver = core.Driver
	// PutOptions configures a pack write.
	PutOptions = core.PutOptions
	// Info describes stored pack file metadata.
	Info = core.Info
	// Store is the interface for pack storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local directory driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory driver.
	DriverMemory = core.DriverMemory
)

var (
	// ErrNotFound indicates a missing pack file.
	ErrNotFound = core.ErrNotFound
	// ErrExists indicates a Put onto an existing key.
	ErrExists = core.ErrExists
)
