// Package assemble turns ranked retrieval results into the context payload
// handed to downstream generation: verbatim excerpts grouped by kind under
// a byte budget, plus the flat list of recommended document IDs.
package assemble
