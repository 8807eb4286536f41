package tag

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cratekeeper/src/music"
	"github.com/dhowden/tag"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
)

// Reader reads file metadata with the dhowden/tag library. FLAC files
// are additionally parsed with go-flac for exact stream info and
// first-value Vorbis comment semantics.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read reads the tags of one audio file into a TagRecord. The file
// handle is closed on every path. Files whose container cannot be
// parsed fail with ErrUnreadableTag.
func (r *Reader) Read(ctx context.Context, filePath string) (*music.TagRecord, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, music.NewFault(music.ErrUnreadableTag, filePath, "open file", err)
	}
	defer file.Close()

	tags, err := tag.ReadFrom(file)
	if err != nil {
		return nil, music.NewFault(music.ErrUnreadableTag, filePath, "read tags", err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), ".")
	record := music.NewTagRecord()

	record.Set(music.KeyTitle, tags.Title())
	record.Set(music.KeyAlbum, tags.Album())
	record.Set(music.KeyArtist, tags.Artist())
	albumArtist := tags.AlbumArtist()
	if albumArtist == "" {
		albumArtist = tags.Artist()
	}
	record.Set(music.KeyAlbumArtist, albumArtist)
	record.Set(music.KeyComposer, tags.Composer())
	record.Set(music.KeyGenre, tags.Genre())
	if year := tags.Year(); year > 0 {
		record.Set(music.KeyDate, strconv.Itoa(year))
	}
	if disc, _ := tags.Disc(); disc > 0 {
		record.Set(music.KeyDiscNumber, strconv.Itoa(disc))
	}

	raw := tags.Raw()
	var flac *flacFile
	if ext == "flac" {
		flac = parseFlac(filePath)
	}
	if isCommentStyle(ext) {
		readCommentFields(record, raw, flac)
	} else {
		readFrameFields(record, raw)
	}

	if !record.Has(music.KeyDescription) {
		record.Set(music.KeyDescription, tags.Comment())
	}
	if !record.Has(music.KeyTrackNumber) {
		if n, total := tags.Track(); n > 0 {
			record.Set(music.KeyTrackNumber, strconv.Itoa(n))
			if total > 0 && !record.Has(music.KeyTrackTotal) {
				record.Set(music.KeyTrackTotal, strconv.Itoa(total))
			}
		}
	}

	readAudioProperties(record, filePath, flac)
	return record, nil
}

// isCommentStyle reports whether the extension belongs to the Vorbis
// comment family. Everything else is probed as frame-style.
func isCommentStyle(ext string) bool {
	switch ext {
	case "flac", "ogg", "oga", "opus":
		return true
	}
	return false
}

// readCommentFields fills the fields that have no convenience accessor
// from Vorbis comment names. dhowden lowercases comment names in Raw();
// FLAC files prefer the go-flac block, which keeps every value of a
// repeated comment so the first one can be picked.
func readCommentFields(record *music.TagRecord, raw map[string]interface{}, flac *flacFile) {
	get := func(names ...string) string {
		if flac != nil && flac.comments != nil {
			for _, name := range names {
				if vals, err := flac.comments.Get(name); err == nil && len(vals) > 0 {
					if v := strings.TrimSpace(vals[0]); v != "" {
						return v
					}
				}
			}
		}
		return probe(raw, names...)
	}

	record.Set(music.KeyTrackNumber, get("tracknumber"))
	record.Set(music.KeyTrackTotal, get("tracktotal", "totaltracks"))
	record.Set(music.KeyDescription, get("description", "comment"))
	record.Set(music.KeyPerformer, get("performer"))
	record.Set(music.KeyContact, get("contact"))
	record.Set(music.KeyEncodedBy, get("encoded-by", "encodedby"))
	record.Set(music.KeyCopyright, get("copyright"))
	if !record.Has(music.KeyDate) {
		record.Set(music.KeyDate, get("date", "year"))
	}
}

// readFrameFields fills the same fields from ID3 frames. The track
// pair lives in a single "N/total" text frame.
func readFrameFields(record *music.TagRecord, raw map[string]interface{}) {
	if v := probe(raw, "TRCK", "TRK", "track"); v != "" {
		num, total := splitTrackPair(v)
		record.Set(music.KeyTrackNumber, num)
		record.Set(music.KeyTrackTotal, total)
	}
	record.Set(music.KeyDescription, probe(raw, "COMM", "COM", "comment"))
	record.Set(music.KeyPerformer, probe(raw, "TOPE", "TOA"))
	record.Set(music.KeyContact, probe(raw, "WXXX", "WXX", "WOAR"))
	record.Set(music.KeyEncodedBy, probe(raw, "TENC", "TEN"))
	record.Set(music.KeyCopyright, probe(raw, "TCOP", "TCR"))
}

// probe returns the first non-empty value among the candidate raw tag
// names, trying each name as given, uppercased and lowercased.
func probe(raw map[string]interface{}, names ...string) string {
	if raw == nil {
		return ""
	}
	for _, name := range names {
		for _, key := range []string{name, strings.ToUpper(name), strings.ToLower(name)} {
			if v := rawString(raw[key]); v != "" {
				return v
			}
		}
	}
	return ""
}

// rawString extracts text from the value types dhowden stores in Raw().
func rawString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case *tag.Comm:
		return strings.TrimSpace(v.Text)
	case tag.Comm:
		return strings.TrimSpace(v.Text)
	case []byte:
		return strings.TrimSpace(string(v))
	case int:
		if v > 0 {
			return strconv.Itoa(v)
		}
	}
	return ""
}

// splitTrackPair splits an ID3 "N/total" value. A bare "N" leaves the
// total empty.
func splitTrackPair(s string) (num, total string) {
	parts := strings.SplitN(s, "/", 2)
	num = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		total = strings.TrimSpace(parts[1])
	}
	return num, total
}

// flacFile carries the pieces of a parsed FLAC file the reader uses.
type flacFile struct {
	comments *flacvorbis.MetaDataBlockVorbisComment
	stream   *goflac.StreamInfoBlock
}

// parseFlac reads the metadata blocks of a FLAC file. Any parse
// problem returns nil; the dhowden fields already cover the basics.
func parseFlac(filePath string) *flacFile {
	f, err := goflac.ParseFile(filePath)
	if err != nil {
		return nil
	}
	out := &flacFile{}
	for _, meta := range f.Meta {
		if meta.Type == goflac.VorbisComment && out.comments == nil {
			if cmt, err := flacvorbis.ParseFromMetaDataBlock(*meta); err == nil {
				out.comments = cmt
			}
		}
	}
	if stream, err := f.GetStreamInfo(); err == nil {
		out.stream = stream
	}
	return out
}

// readAudioProperties derives the display-string properties. FLAC
// values come from STREAMINFO; other formats carry no stream header
// the tag layer can see, so their properties stay empty.
func readAudioProperties(record *music.TagRecord, filePath string, flac *flacFile) {
	if flac == nil || flac.stream == nil {
		return
	}
	stream := flac.stream
	if stream.SampleRate > 0 {
		record.Set(music.KeySampleRate, strconv.Itoa(stream.SampleRate))
		if stream.SampleCount > 0 {
			seconds := int(stream.SampleCount / int64(stream.SampleRate))
			record.Set(music.KeyLength, music.HumanDuration(seconds))
			if info, err := os.Stat(filePath); err == nil && seconds > 0 {
				kbps := info.Size() * 8 / int64(seconds) / 1000
				record.Set(music.KeyBitrate, strconv.FormatInt(kbps, 10))
			}
		}
	}
	if stream.ChannelCount > 0 {
		record.Set(music.KeyChannels, strconv.Itoa(stream.ChannelCount))
	}
}
