// Package autofinder discovers used-vehicle inventory near a buyer's location.
// It chains external discovery and extraction services in four stages: dealer
// discovery, inventory-page discovery, AI-assisted structured extraction, and
// cross-source merge/deduplication into a canonical inventory snapshot.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., google/, gemini/, sqlite/).
package autofinder
