// Package metagraph provides a convention-driven metadata model builder:
// an in-memory graph of entity types, properties, keys, foreign keys and
// navigations that is built incrementally by running an ordered,
// extensible set of conventions. Conventions react to structural changes
// (an entity type added, a base type changed, an annotation set) and may
// mutate the model further, possibly triggering cascades of other
// conventions.
//
// The root package holds the interfaces the pipeline consumes but does
// not own: the diagnostics Reporter and the parameter BindingFactory.
// The model graph and its builder operations live in the metadata
// package, the standard conventions in the conventions package, the
// reflection-based member introspection in the introspect package, and
// the document-store specialization in the document package.
package metagraph
