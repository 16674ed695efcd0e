package resource

import (
	"context"
	"sort"

	"tintcore/internal/texture"
	"tintcore/pkg/domain"
)

// Bundle is the prepared form shared by categories that read documents and
// images from one root.
type Bundle struct {
	Documents map[domain.ResourceID]domain.Document
	Images    texture.Layer
}

// ScanBundle reads documents and images under root.
func ScanBundle(ctx context.Context, src Source, root string) (Bundle, error) {
	docs, err := src.Documents(ctx, root)
	if err != nil {
		return Bundle{}, err
	}
	imgs, err := src.Images(ctx, root)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{Documents: docs, Images: imgs}, nil
}

// SortedIDs returns the document ids in a stable order.
func SortedIDs(docs map[domain.ResourceID]domain.Document) []domain.ResourceID {
	ids := make([]domain.ResourceID, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })
	return ids
}
