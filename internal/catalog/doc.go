// Package catalog defines the media records exchanged with a Jellyfin server
// and the Catalog contract the favorites, duplicate, and resolution workflows
// consume.
//
// Records mirror the Jellyfin item schema (PascalCase JSON keys). Optional
// numeric attributes are pointers so that an absent value stays distinct
// from zero; encoders omit absent values and decoders ignore unknown keys.
package catalog
