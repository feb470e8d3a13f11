// Package httpapi exposes coach over HTTP for browser front ends.
//
// Answers are streamed as newline-delimited JSON: one "meta" event with the
// sources, "delta" events with answer text, then a single "done" or "error".
package httpapi
