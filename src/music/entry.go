package music

import (
	"fmt"
	"path/filepath"
	"strings"
)

// EntryKind distinguishes inducted items.
type EntryKind int

const (
	EntryAudio EntryKind = iota
	EntryDirectory
)

// FileEntry is one item found while inducting a source tree. Directory
// entries carry a trailing path separator on Name; audio entries carry
// their lowercase extension without the dot.
type FileEntry struct {
	Path string
	Name string
	Ext  string
	Kind EntryKind
}

// IsDir reports whether the entry is a directory.
func (e FileEntry) IsDir() bool {
	return e.Kind == EntryDirectory
}

// IllegalNameChars are the characters replaced by '_' when a base name
// is sanitized.
const IllegalNameChars = `/\?%*:|"<>`

// Substitution records one character replaced during sanitization.
type Substitution struct {
	Position int
	Old      rune
}

// SanitizeBaseName replaces every illegal character in name with '_'
// and reports each replacement. Applying it twice changes nothing.
func SanitizeBaseName(name string) (string, []Substitution) {
	var subs []Substitution
	runes := []rune(name)
	for i, r := range runes {
		if strings.ContainsRune(IllegalNameChars, r) {
			subs = append(subs, Substitution{Position: i, Old: r})
			runes[i] = '_'
		}
	}
	return string(runes), subs
}

// SanitizeValue replaces every illegal character in a rendered tag
// value with '_', keeping no record of what changed.
func SanitizeValue(s string) string {
	clean, _ := SanitizeBaseName(s)
	return clean
}

// CollisionCandidate returns base with an index suffix between stem and
// extension: CollisionCandidate("Song.flac", 2) is "Song[2].flac".
func CollisionCandidate(base string, n int) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s[%d]%s", stem, n, ext)
}
