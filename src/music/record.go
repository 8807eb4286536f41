package music

import (
	"fmt"
)

// Canonical tag keys. Readers normalize every source format to these
// names; templates look values up by them.
const (
	KeyTitle       = "TITLE"
	KeyAlbum       = "ALBUM"
	KeyArtist      = "ARTIST"
	KeyAlbumArtist = "ALBUMARTIST"
	KeyComposer    = "COMPOSER"
	KeyGenre       = "GENRE"
	KeyDate        = "DATE"
	KeyTrackNumber = "TRACKNUMBER"
	KeyTrackTotal  = "TRACKTOTAL"
	KeyDiscNumber  = "DISCNUMBER"
	KeyDescription = "DESCRIPTION"
	KeyPerformer   = "PERFORMER"
	KeyContact     = "CONTACT"
	KeyEncodedBy   = "ENCODED-BY"
	KeyCopyright   = "COPYRIGHT"

	// Derived audio properties, stored as display strings.
	KeyLength     = "LENGTH"
	KeyBitrate    = "BITRATE"
	KeySampleRate = "SAMPLERATE"
	KeyChannels   = "CHANNELS"
)

// CanonicalKeys lists every key a reader may populate, in display order.
var CanonicalKeys = []string{
	KeyTitle, KeyAlbum, KeyArtist, KeyAlbumArtist, KeyComposer, KeyGenre,
	KeyDate, KeyTrackNumber, KeyTrackTotal, KeyDiscNumber, KeyDescription,
	KeyPerformer, KeyContact, KeyEncodedBy, KeyCopyright,
	KeyLength, KeyBitrate, KeySampleRate, KeyChannels,
}

// TagRecord is a flat string view of one audio file's metadata.
// Multi-valued source fields contribute their first value only; a key
// that was never set reads as the empty string.
type TagRecord struct {
	fields map[string]string
}

// NewTagRecord returns an empty record.
func NewTagRecord() *TagRecord {
	return &TagRecord{fields: make(map[string]string)}
}

// Set stores value under key. Empty values are dropped so Has stays
// meaningful.
func (r *TagRecord) Set(key, value string) {
	if value == "" {
		return
	}
	r.fields[key] = value
}

// Get returns the value for key, or the empty string.
func (r *TagRecord) Get(key string) string {
	return r.fields[key]
}

// Has reports whether key holds a non-empty value.
func (r *TagRecord) Has(key string) bool {
	return r.fields[key] != ""
}

// Len returns the number of populated fields.
func (r *TagRecord) Len() int {
	return len(r.fields)
}

// HumanDuration formats a duration in whole seconds for display.
// Durations under an hour render as MM:SS, under a day as HH:MM:SS and
// from a day up as D:HH:MM:SS with the day count unpadded.
func HumanDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	days := seconds / 86400
	hours := seconds % 86400 / 3600
	minutes := seconds % 3600 / 60
	secs := seconds % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%d:%02d:%02d:%02d", days, hours, minutes, secs)
	case hours > 0:
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	default:
		return fmt.Sprintf("%02d:%02d", minutes, secs)
	}
}
