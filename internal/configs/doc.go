// Package configs manages foldervault's user configuration.
//
// Configuration is a single TOML file at <UserConfigDir>/foldervault/config.toml:
//
//	[user]
//	installation_uuid = "..."
//
//	[storage]
//	registry_path = ""   # defaults to <data dir>/registry.db
//	keystore_dir = ""    # defaults to <data dir>/keystore
//
//	[keystore]
//	alias = "foldervault-<hostname>"
//	argon_time = 3
//	argon_memory_kib = 65536
//	argon_threads = 4
//	handle_ttl_seconds = 30
//
//	[vault]
//	exclude = ["**/.DS_Store", "**/Thumbs.db"]
//	keep_source = false
//
// The installation UUID is generated on first use. Missing keys keep their
// defaults, so a partial file is valid.
//
// # Settings
//
// UserVaultSettings is initialized at startup with the config and data
// directories (XDG_DATA_HOME, falling back to ~/.local/share). Tests point
// these at temporary directories.
package configs
