package files

import (
	"testing"

	"cratekeeper/src/features/config"
	"cratekeeper/src/music"
)

func sampleRecord() *music.TagRecord {
	record := music.NewTagRecord()
	record.Set(music.KeyAlbumArtist, "Neil Young")
	record.Set(music.KeyAlbum, "Harvest Moon")
	record.Set(music.KeyTrackNumber, "4")
	record.Set(music.KeyTitle, "Harvest Moon")
	return record
}

func TestFormatRendersTemplate(t *testing.T) {
	formatter := NewTemplateFormatter(testManager())
	entry := music.FileEntry{Name: "04.flac", Ext: "flac"}

	got, err := formatter.Format(sampleRecord(), entry)
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	want := "Neil Young/Harvest Moon/4. Harvest Moon.flac"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatMissingTagFallsBackToTokenText(t *testing.T) {
	record := music.NewTagRecord()
	record.Set(music.KeyAlbumArtist, "Neil Young")
	record.Set(music.KeyTrackNumber, "4")
	record.Set(music.KeyTitle, "Harvest Moon")

	formatter := NewTemplateFormatter(testManager())
	got, err := formatter.Format(record, music.FileEntry{Ext: "mp3"})
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	want := "Neil Young/ALBUM/4. Harvest Moon.mp3"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatSeparatorInTagValue(t *testing.T) {
	record := sampleRecord()
	record.Set(music.KeyAlbumArtist, "AC/DC")

	formatter := NewTemplateFormatter(testManager())
	got, err := formatter.Format(record, music.FileEntry{Ext: "flac"})
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	want := "AC_DC/Harvest Moon/4. Harvest Moon.flac"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatAsciify(t *testing.T) {
	manager := testManager()
	cfg := *manager.Get()
	cfg.Organize.Asciify = true
	manager.Update(&cfg)

	record := sampleRecord()
	record.Set(music.KeyAlbumArtist, "Björk")
	record.Set(music.KeyAlbum, "Vespertine")

	formatter := NewTemplateFormatter(manager)
	got, err := formatter.Format(record, music.FileEntry{Ext: "flac"})
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	want := "Bjork/Vespertine/4. Harvest Moon.flac"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatFollowsTemplateChanges(t *testing.T) {
	manager := testManager()
	formatter := NewTemplateFormatter(manager)
	entry := music.FileEntry{Ext: "flac"}

	if _, err := formatter.Format(sampleRecord(), entry); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}

	cfg := *manager.Get()
	cfg.Template = "{ARTIST} - {TITLE}"
	manager.Update(&cfg)

	record := sampleRecord()
	record.Set(music.KeyArtist, "Neil Young")
	got, err := formatter.Format(record, entry)
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	want := "Neil Young - Harvest Moon.flac"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatRejectsEmptyTemplate(t *testing.T) {
	manager := config.NewManager(&config.Config{Template: "   "})
	formatter := NewTemplateFormatter(manager)
	if _, err := formatter.Format(sampleRecord(), music.FileEntry{Ext: "flac"}); err == nil {
		t.Error("expected an error for an empty template")
	}
}

func TestFormatDirectoryEntryGetsNoExtension(t *testing.T) {
	formatter := NewTemplateFormatter(testManager())
	entry := music.FileEntry{Name: "album/", Kind: music.EntryDirectory}

	got, err := formatter.Format(sampleRecord(), entry)
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	want := "Neil Young/Harvest Moon/4. Harvest Moon"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
