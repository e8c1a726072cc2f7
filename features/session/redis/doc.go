// Package redis provides the Redis-backed session cache and per-session
// mutation lock. Build the low-level client via
// features/session/redis/clients/redis and pass it to NewCache and NewLocker
// so the orchestrator can keep live sessions hot and serialize turns.
package redis
