package puzzle

import (
	"fmt"
	"strconv"
	"strings"
)

// PathKey encodes an ordered path as "c,r,c,r,...". It is the key format
// used by word_locations.
func PathKey(path []Point) string {
	parts := make([]string, 0, len(path)*2)
	for _, p := range path {
		parts = append(parts, strconv.Itoa(p.Column), strconv.Itoa(p.Row))
	}
	return strings.Join(parts, PathSeparator)
}

// ParsePathKey decodes a path key back into points
func ParsePathKey(key string) ([]Point, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("path key is empty")
	}

	parts := strings.Split(key, PathSeparator)
	if len(parts)%2 != 0 {
		return nil, fmt.Errorf("path key %q has an odd number of coordinates", key)
	}

	path := make([]Point, 0, len(parts)/2)
	for i := 0; i < len(parts); i += 2 {
		column, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return nil, fmt.Errorf("path key %q: bad column %q: %w", key, parts[i], err)
		}
		row, err := strconv.Atoi(strings.TrimSpace(parts[i+1]))
		if err != nil {
			return nil, fmt.Errorf("path key %q: bad row %q: %w", key, parts[i+1], err)
		}
		path = append(path, Point{Column: column, Row: row})
	}

	return path, nil
}

// Reverse returns a reversed copy of path
func Reverse(path []Point) []Point {
	reversed := make([]Point, len(path))
	for i, p := range path {
		reversed[len(path)-1-i] = p
	}
	return reversed
}
