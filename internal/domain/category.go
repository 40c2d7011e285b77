package domain

// UnknownCategoryName is returned for category ids missing from the registry.
const UnknownCategoryName = "Unknown"

// Category is an entry in the category registry. Parent is informational only;
// aggregation treats categories as flat.
type Category struct {
	ID     string
	Name   string
	Type   string
	Parent *string
	Icon   string
	Color  string
}
