package types

// Item is an entry in the shared item catalogue. Items are not owned by any
// user; every authenticated caller may read and modify them.
type Item struct {
	// ID is the unique identifier of the item, assigned on creation.
	ID int64 `json:"id" db:"id"`

	// Name is the non-empty display name of the item.
	Name string `json:"name" db:"name"`

	// Description is free-form text and may be empty.
	Description string `json:"description" db:"description"`

	// Price is strictly positive.
	Price float64 `json:"price" db:"price"`
}

// Optional marks a value as present or absent. The zero value is absent.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// ItemPatch lists the fields a partial update replaces. Absent fields are
// left untouched.
type ItemPatch struct {
	Name        Optional[string]
	Description Optional[string]
	Price       Optional[float64]
}

// Empty reports whether the patch carries no fields.
func (p ItemPatch) Empty() bool {
	return !p.Name.Set && !p.Description.Set && !p.Price.Set
}

// Apply returns item with the patch's present fields replaced.
func (p ItemPatch) Apply(item Item) Item {
	if p.Name.Set {
		item.Name = p.Name.Value
	}
	if p.Description.Set {
		item.Description = p.Description.Value
	}
	if p.Price.Set {
		item.Price = p.Price.Value
	}
	return item
}
