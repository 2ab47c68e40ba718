// Package jsonl implements records.Store over a JSON Lines file.
package jsonl
