package catalog

const (
	// EventVariantCreated carries the full stored variant after an insert.
	EventVariantCreated = "variant:created"
	// EventVariantUpdated carries the canonical re-read variant after an update.
	EventVariantUpdated = "variant:updated"
	// EventVariantDeleted carries the identity pair of a removed variant.
	EventVariantDeleted = "variant:deleted"
)

// Broadcaster fans a mutation event out to connected clients. Delivery is
// best effort: Emit must not block and its outcome never affects the
// operation that triggered it.
type Broadcaster interface {
	Emit(event string, payload any)
}
