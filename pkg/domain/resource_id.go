package domain

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// DefaultNamespace is assumed when an identifier omits its namespace.
const DefaultNamespace = "minecraft"

// ResourceID is a namespaced path identifier ("namespace:path"). It is the
// universal key for textures, override records and registry entries and is
// compared by value.
type ResourceID struct {
	Namespace string
	Path      string
}

// NewResourceID builds an identifier without validation.
func NewResourceID(namespace, path string) ResourceID {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return ResourceID{Namespace: namespace, Path: path}
}

// ParseResourceID parses "namespace:path" or a bare "path".
func ParseResourceID(raw string) (ResourceID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ResourceID{}, fmt.Errorf("resource id: empty")
	}
	ns, path := DefaultNamespace, raw
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		ns, path = raw[:i], raw[i+1:]
		if ns == "" {
			ns = DefaultNamespace
		}
	}
	if path == "" {
		return ResourceID{}, fmt.Errorf("resource id %q: empty path", raw)
	}
	if !validChars(ns, false) {
		return ResourceID{}, fmt.Errorf("resource id %q: invalid namespace", raw)
	}
	if !validChars(path, true) {
		return ResourceID{}, fmt.Errorf("resource id %q: invalid path", raw)
	}
	return ResourceID{Namespace: ns, Path: path}, nil
}

// MustParseResourceID panics on malformed input. Intended for literals.
func MustParseResourceID(raw string) ResourceID {
	id, err := ParseResourceID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

func validChars(s string, allowSlash bool) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
		case r == '/' && allowSlash:
		default:
			return false
		}
	}
	return true
}

// String renders the canonical "namespace:path" form.
func (id ResourceID) String() string {
	if id.Namespace == "" && id.Path == "" {
		return ""
	}
	return id.Namespace + ":" + id.Path
}

// IsZero reports whether the identifier is unset.
func (id ResourceID) IsZero() bool { return id.Namespace == "" && id.Path == "" }

// WithPath returns a copy with the path replaced.
func (id ResourceID) WithPath(path string) ResourceID {
	return ResourceID{Namespace: id.Namespace, Path: path}
}

// WithSuffix returns the tint-indexed variant "path_<i>".
func (id ResourceID) WithSuffix(i int) ResourceID {
	return id.WithPath(id.Path + "_" + strconv.Itoa(i))
}

// SplitSuffix strips a trailing "_<non-negative int>" from the path. ok is
// false when the path carries no such suffix.
func (id ResourceID) SplitSuffix() (base ResourceID, index int, ok bool) {
	i := strings.LastIndexByte(id.Path, '_')
	if i <= 0 || i == len(id.Path)-1 {
		return id, 0, false
	}
	digits := id.Path[i+1:]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return id, 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return id, 0, false
	}
	return id.WithPath(id.Path[:i]), n, true
}

// Compare orders identifiers by namespace then path.
func (id ResourceID) Compare(other ResourceID) int {
	if c := cmp.Compare(id.Namespace, other.Namespace); c != 0 {
		return c
	}
	return cmp.Compare(id.Path, other.Path)
}

// MarshalText implements encoding.TextMarshaler.
func (id ResourceID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ResourceID) UnmarshalText(b []byte) error {
	parsed, err := ParseResourceID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// TargetSet is the explicit target list of an override record. It decodes
// from a single identifier or an array of them.
type TargetSet []ResourceID

// UnmarshalJSON implements json.Unmarshaler.
func (s *TargetSet) UnmarshalJSON(b []byte) error {
	var one ResourceID
	if err := json.Unmarshal(b, &one); err == nil {
		*s = TargetSet{one}
		return nil
	}
	var many []ResourceID
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("targets: %w", err)
	}
	*s = many
	return nil
}

// Or returns the set, or only fallback when the set is empty.
func (s TargetSet) Or(fallback ResourceID) []ResourceID {
	if len(s) == 0 {
		return []ResourceID{fallback}
	}
	out := slices.Clone([]ResourceID(s))
	slices.SortFunc(out, ResourceID.Compare)
	return slices.Compact(out)
}
