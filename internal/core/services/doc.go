// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services:
//   - IndexService: full index passes over a vault
//   - SearchService: full-text queries with pluggable scoring
//   - UsageService: access counting for usage-aware ranking
//   - ResultActionService: open and copy actions on results
//   - SettingsService: typed view over the config store
//
// Engine serialises these behind a single entry point and EngineHost
// holds it for front ends that start before the store is open.
package services
