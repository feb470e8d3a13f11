// Package connectors holds the remote document stores questions are
// answered from. Each store lists candidate files and downloads their bytes
// through the driven.DocumentStore port.
//
// Only Dropbox is implemented. The local library is served from the SQLite
// store instead.
package connectors
