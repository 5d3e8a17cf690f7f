// Package config loads nestview's settings.
//
// # Resolution Order
//
//  1. Built-in defaults (Default)
//  2. The TOML file at the given path, or ~/.config/nestview/config.toml
//  3. NESTVIEW_* environment variables, optionally seeded from a .env file
//     by LoadEnvFile
//
// A missing config file is not an error. Blank values never override a
// lower layer.
//
// # TOML Format
//
//	api_url = "https://api.nestingglobal.example"
//	socket_url = "wss://api.nestingglobal.example"
//	amqp_url = ""
//	cache_backend = "sqlite"   # file, sqlite, memory or none
//	cache_dir = "~/.cache/nestview"
//	cache_compress = true
//	log_level = "info"
//	log_format = "text"        # text, pretty or json
//	log_file = "~/.local/state/nestview/nestview.log"
//	fluent_host = ""
//	fluent_port = 24224
//	metrics_addr = "127.0.0.1:9464"
//
// Tilde expansion applies to the config path, cache_dir and log_file.
//
// # Validation
//
// Load only fails on unreadable or unparseable input. Call Validate to reject
// unknown cache backends, log formats or levels and an out-of-range fluent
// port; all problems are reported together.
package config
