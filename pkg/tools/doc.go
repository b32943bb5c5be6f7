// Package tools provides the built-in tool implementations shipped with the
// runtime: file reads and writes, command execution, and a clock.
//
// Each tool declares its side-effect class (policy.Classified), so the
// default confirmation policy gates filesystem writes and process execution
// without the engine hardcoding tool names.
package tools
