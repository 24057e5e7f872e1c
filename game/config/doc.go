// Package config loads server settings from the environment.
//
// Every setting has a TTT_ prefixed variable and a default, so a bare
// invocation starts a local server on port 8080 backed by a SQLite file:
//
//	TTT_HOST                      listen host (localhost)
//	TTT_PORT                      listen port (8080)
//	TTT_DB_DRIVER                 sqlite or postgres (sqlite)
//	TTT_DB_DSN                    file path or connection string (tictactoe.db)
//	TTT_SESSION_IDLE_TTL          evict matches idle this long (30m)
//	TTT_SESSION_CLEANUP_INTERVAL  how often the eviction job runs (5m)
//	TTT_SESSION_CAPACITY          max cached matches, 0 for no limit (0)
//	TTT_DEBUG                     development logging (false)
//
// A .env file in the working directory is loaded by the command before
// parsing. Command-line flags override the parsed values.
package config
