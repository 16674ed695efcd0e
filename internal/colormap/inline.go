package colormap

import (
	"encoding/json"
	"fmt"

	"tintcore/pkg/domain"
)

// Inline decodes a mapping embedded in another category's record, links its
// references through g and binds it against the resolver's index with
// target as the default texture id. Compound channels left unbound in
// non-strict mode are pruned. A dangling reference fails with an error
// matching IsUnresolvedReference; a mapping that ends up without any bound
// texture fails with ErrMissingTexture.
func (r *Resolver) Inline(raw json.RawMessage, target domain.ResourceID, g Getter, strict bool) (Mapping, error) {
	m, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if m, err = Link(m, g); err != nil {
		return nil, err
	}
	if err := r.Resolve(m, target, strict); err != nil {
		return nil, err
	}
	if c, ok := m.(*Compound); ok && !strict {
		c.Prune()
	}
	if !m.Resolved() {
		return nil, domain.NewResolutionError(target, target, fmt.Errorf("colormap: %w", domain.ErrMissingTexture))
	}
	return m, nil
}
