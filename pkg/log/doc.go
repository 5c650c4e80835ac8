/*
Package log provides structured logging for Vector using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging with
component-specific loggers, configurable log levels, and helper functions for
common logging patterns. All logs include timestamps and support filtering by
severity level for production debugging.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("topology")                │          │
	│  │  - WithComponentKey("source.web_logs")      │          │
	│  │  - WithBufferKey("web_logs->json_parser")   │          │
	│  │  - WithReloadGeneration(7)                  │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Log Output                       │          │
	│  │                                              │          │
	│  │  JSON Format:                               │          │
	│  │  {                                           │          │
	│  │    "level": "info",                         │          │
	│  │    "component": "topology",                 │          │
	│  │    "time": "2024-10-13T10:30:00Z",         │          │
	│  │    "message": "component started"           │          │
	│  │  }                                           │          │
	│  │                                              │          │
	│  │  Console Format:                            │          │
	│  │  10:30AM INF component started component=topology │    │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Usage

Initializing the logger:

	import "github.com/vectorflow/vector/pkg/log"

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Simple logging:

	log.Info("topology built successfully")
	log.Warn("buffer approaching capacity")
	log.Error("sink rejected batch")

Component loggers:

	topoLog := log.WithComponent("topology")
	topoLog.Info().Str("component_id", "sink.loki").Msg("component entered Running")

	bufLog := log.WithBufferKey("web_logs->json_parser")
	bufLog.Warn().Int("len", 9800).Msg("buffer above 90% capacity")

# Integration Points

This package integrates with:

  - pkg/topology: logs component lifecycle transitions
  - pkg/reload: logs reload plan computation and outcome
  - pkg/controlplane: logs the control socket's listen address

# Design Patterns

Global Logger Pattern:
  - Single package-level Logger instance initialized once at startup
  - Accessible from all packages without threading a logger through every call

Context Logger Pattern:
  - Create child loggers with context fields (component, component_id, buffer_id,
    reload_generation) and pass them down instead of repeating fields at each call site

# Best Practices

Do:
  - Use Info level for production
  - Use structured fields for queryable data
  - Create component-specific loggers at the point a component starts

Don't:
  - Log event payload contents (may contain sensitive customer data)
  - Log in tight loops on the data path — log component lifecycle and buffer
    state transitions, not per-event activity
*/
package log
