package types

// Entity is the constraint satisfied by every record kept in a collection
// store. WithEntityID returns a copy carrying the given identifier; the store
// uses it to assign fresh IDs on creation and to pin the ID across updates.
type Entity[T any] interface {
	EntityID() string
	WithEntityID(id string) T
}
