/*
Package ports defines the driven ports (interfaces) for the Trestle engine.

These interfaces decouple the engine from external implementations, allowing saved
configuration to live in memory, on disk or in Redis.

# Key Interfaces

  - ConfigStore: persists the values of persistent parameters under a profile name.

RunConfigStoreContract is a reusable test suite every ConfigStore adapter runs.
*/
package ports
