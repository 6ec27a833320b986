// Package config loads, normalizes, and validates vidmill configuration.
//
// Configuration lives in a TOML file (~/.config/vidmill/config.toml by
// default, or a project-local vidmill.toml) and is grouped into sections:
//   - [paths]: output root and log directory
//   - [processing]: worker count, frame interval, model, language, timeouts
//   - [tools]: external binary overrides (yt-dlp, ffmpeg, ffprobe, uvx)
//   - [history]: run-history database toggle and location
//   - [logging]: log format and level
//
// Load returns a fully expanded config; callers should treat it as read-only
// after that point. CLI flags on the process command override the
// [processing] values for a single run.
package config
