// Package simplepublishing provides a reusable library for a publishing
// platform's content lifecycle and discovery: article creation and editing
// with automatic slug assignment, immutable version history, per-user
// engagement tracking with capped claps, trending/search/personalized feeds,
// and tag usage statistics.
//
// It exposes a single Service interface backed by pluggable collaborators: a
// Repository for persistence (memory and Postgres implementations live under
// subpackages), an IdentityResolver that maps caller emails to user records,
// and an optional EventSink notified after lifecycle transitions.
//
// Derived Fields
//
// ReadTime, QualityScore, ReadingLevel, and the formatted view counter are
// computed from article content by pure functions in this package; the
// service recomputes ReadTime on every content-changing write and stores it
// on the article, while the other metrics are derived on demand for the
// stats read model.
package simplepublishing
