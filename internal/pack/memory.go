package pack

import (
	memorystore "tintcore/internal/infra/pack/memory"
)

// NewMemory returns an empty in-memory pack.
func NewMemory() Store { return memorystore.New() }
