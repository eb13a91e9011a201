// Package feedgen turns blog index pages into structured feeds.
// It asks a classification oracle for CSS locators describing a page,
// follows the page's pagination chain to collect post links, and extracts
// clean post records using a second oracle-inferred rule.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, goquery/).
package feedgen
