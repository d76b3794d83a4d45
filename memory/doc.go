// Package memory implements the layered memory model behind a conversation:
// a bounded, transient working-memory buffer, a persisted episodic record of
// timestamped interactions, and a persisted semantic key/value store holding
// the user profile.
//
// Architecture:
//   - FileStore: JSON persistence, one directory per user
//   - VectorIndex: optional similarity search over episodic summaries
//   - Embedder: text-to-vector conversion for the index
//   - System: owns all layers and composes the above
//
// Per-user isolation is by directory and collection namespace keyed on the
// user identifier. The vector index is strictly derived data: everything it
// holds is reconstructable from the JSON store, and its absence or failure
// degrades retrieval to recency order.
//
// A System instance is not safe for concurrent use; the conversation loop
// runs one turn at a time per user session, and running multiple processes
// against the same user directory requires external serialization.
package memory
