// Package engineconfig provides shared configuration constants and the
// host module manifest format for the embedding engine.
package engineconfig

// DefaultMaxCallDepth bounds how many nested function calls a single
// resolve() may perform before the executor reports a stack-depth
// runtime error, matching the engine's "bounded runtime errors" design.
const DefaultMaxCallDepth = 256

// DefaultArrayLiteralCapacityHint is an initial capacity for an array
// literal's backing slice. The parser does not read it; array literals
// grow from an empty slice.
const DefaultArrayLiteralCapacityHint = 8

// DefaultBufferSize is the obslog async buffer size used when no
// explicit LoggerConfig.BufferSize is supplied by an embedder.
const DefaultBufferSize = 1000
