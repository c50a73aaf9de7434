package resolution

import (
	"fmt"
	"sort"
	"strings"
)

// Bucket labels, ascending.
const (
	Bucket480p    = "480p"
	Bucket720p    = "720p"
	Bucket1080p   = "1080p"
	Bucket4K      = "4K"
	BucketAbove4K = "above-4K"
)

// Preset is a named maximum resolution.
type Preset struct {
	Name   string
	Width  int
	Height int
}

var presets = []Preset{
	{Name: "480p", Width: 854, Height: 480},
	{Name: "720p", Width: 1280, Height: 720},
	{Name: "1080p", Width: 1920, Height: 1080},
	{Name: "4k", Width: 3840, Height: 2160},
}

// DefaultPreset is used when no threshold is given.
const DefaultPreset = "1080p"

// Presets returns the built-in thresholds in ascending order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// LookupPreset finds a preset by name, case-insensitively.
func LookupPreset(name string) (Preset, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultPreset
	}
	for _, p := range presets {
		if p.Name == key {
			return p, nil
		}
	}
	names := make([]string, 0, len(presets))
	for _, p := range presets {
		names = append(names, p.Name)
	}
	return Preset{}, fmt.Errorf("unknown resolution preset %q (want one of %s)", name, strings.Join(names, ", "))
}

// Bucket maps dimensions to the smallest category whose bounds contain both.
func Bucket(width, height int) string {
	switch {
	case width <= 854 && height <= 480:
		return Bucket480p
	case width <= 1280 && height <= 720:
		return Bucket720p
	case width <= 1920 && height <= 1080:
		return Bucket1080p
	case width <= 3840 && height <= 2160:
		return Bucket4K
	default:
		return BucketAbove4K
	}
}

// BucketOrder returns the bucket labels in ascending order.
func BucketOrder() []string {
	return []string{Bucket480p, Bucket720p, Bucket1080p, Bucket4K, BucketAbove4K}
}

// SortBuckets orders bucket labels ascending; unknown labels sort last by name.
func SortBuckets(labels []string) {
	rank := make(map[string]int, 5)
	for i, label := range BucketOrder() {
		rank[label] = i
	}
	sort.SliceStable(labels, func(i, j int) bool {
		ri, iok := rank[labels[i]]
		rj, jok := rank[labels[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return labels[i] < labels[j]
		}
	})
}
