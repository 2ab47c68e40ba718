// Package kb builds the retrievable knowledge base from source records.
//
// The Builder converts records into documents, embeds new and changed
// documents through a worker pool, carries unchanged vectors over from the
// live generation by content hash, and commits the result as one atomic
// generation flip. Rebuilding with the same records is idempotent: nothing
// is re-embedded and the document set is unchanged.
package kb
