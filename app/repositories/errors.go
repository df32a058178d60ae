package repositories

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrExists is returned when a node with the same name already exists
	// under the same parent.
	ErrExists = errors.New("already exists at this level")

	// ErrInvalidPrice is returned when a product is created or updated with
	// a non-positive price.
	ErrInvalidPrice = errors.New("price must be greater than zero")

	// ErrLocationInUse is returned when deleting a location whose subtree
	// still has items referencing it.
	ErrLocationInUse = errors.New("location still referenced by items")

	// ErrNotCity is returned when a neighborhood is created under a node
	// that is not a top-level city. The delivery tree is two levels deep.
	ErrNotCity = errors.New("parent location is not a city")

	// ErrNotProduct is returned when an item-level operation targets a
	// grouping node.
	ErrNotProduct = errors.New("category is not a product")
)
