// Package file provides the TOML configuration store backing ppltr settings.
//
// Keys are addressed in dot notation ("embedding.primary.model"); on disk
// they are written as nested tables.
package file
