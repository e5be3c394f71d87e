// Package model defines the core data types shared across the service:
// the place records being assigned images, the uniform search result shape
// all providers map into, and the slug rules used for local filenames.
package model

import "strings"

// Record is one row of the place table: a city/country pair that either
// awaits an image or already has one assigned. (City, Country) acts as the
// update key. It is not guaranteed unique in the source table, but treated as
// unique for updates (first match wins).
type Record struct {
	City     string `json:"city"`
	Country  string `json:"country"`
	Type     string `json:"type,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Assigned reports whether the record already has an image filename.
func (r Record) Assigned() bool {
	return r.Filename != ""
}

// Query returns the free-text search query for this record.
func (r Record) Query() string {
	return strings.TrimSpace(r.City + " " + r.Country)
}

// MatchesLetter reports whether the record's country starts with the given
// letter, case-insensitive. An empty letter matches everything.
func (r Record) MatchesLetter(letter string) bool {
	if letter == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(r.Country), strings.ToLower(letter))
}
