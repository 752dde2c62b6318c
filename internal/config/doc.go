// Package config provides termcore's configuration.
//
// Configuration is layered, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← TERMCORE_SECTION_KEY
//	├─────────────────────────────┤
//	│  2. Config File             │  ← ~/.config/termcore/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Command line flags are applied by the caller after Load returns.
//
// # Basic Usage
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    return err
//	}
//	sched := ansi.NewScheduler(parser, ansi.FromConfig(cfg.Scheduler))
//
// # File Format
//
//	[scheduler]
//	throttle = "100ms"
//	stale_timeout = "5s"
//	run_throttle = "100ms"
//
//	[driver]
//	tick = "50ms"
//	escape_timeout = "50ms"
//
//	[canvas]
//	style = "single"
//
//	[logging]
//	level = "info"
//	file = ""
package config
