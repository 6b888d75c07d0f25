// Package config loads runtime configuration for the rentkeeper upload CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_url": "https://files.example.com",
//	  "access_token": "eyJ...",
//	  "request_timeout": "30s",
//	  "transfer_timeout": "5m",
//	  "max_image_width": 1920,
//	  "image_quality": 80,
//	  "compress": true,
//	  "journal_dsn": "/var/lib/rentkeeper/journal.db"
//	}
package config
