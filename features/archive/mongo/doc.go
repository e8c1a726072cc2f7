// Package mongo provides the MongoDB-backed terminal-session archive. Build
// the low-level client via features/archive/mongo/clients/mongo and pass it
// to New so the orchestrator can persist completed configurations and the
// analytics queries can read them back.
package mongo
