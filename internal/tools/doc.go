// Package tools runs the external command-line tools the pipeline stages
// drive: the engine build CLI, the cloud CLI, 7z and friends.
//
// Ownership boundary:
// - local command runners
//
// - command line rendering for logs
//
// - stdout parsing (last line or whole-output JSON)
package tools
