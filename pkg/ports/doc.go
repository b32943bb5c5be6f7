/*
Package ports defines the driven ports (interfaces) for the orange-agent
runtime.

These interfaces decouple the turn engine from external collaborators, allowing
it to work with any model backend, tool implementation, or transcript storage.

# Key Interfaces

  - ModelClient: the LLM collaborator that generates replies and executes
    accepted tool calls through its own tool-execution path.
  - Tool: a callable capability with schema validation and a confirmation
    predicate.
  - TranscriptStore: persistence for session transcripts.
  - DistributedLocker: distributed concurrency control for multi-replica
    session access.
*/
package ports
