package domain

// Category names one override category. Each category owns its registry,
// its reloader and its host target set.
type Category string

const (
	CategoryColormap         Category = "colormaps"
	CategoryLightmap         Category = "lightmaps"
	CategoryBlockProperties  Category = "block_properties"
	CategoryDimensionEffects Category = "dimension_effects"
	CategoryParticle         Category = "particles"
	CategoryItem             Category = "item_appearances"
)

// Document is one structured payload found during a resource scan.
type Document struct {
	ID     ResourceID
	Source string // pack key the payload was read from
	Data   []byte
}
