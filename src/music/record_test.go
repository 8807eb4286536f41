package music

import "testing"

func TestHumanDuration(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{45, "00:45"},
		{59, "00:59"},
		{60, "01:00"},
		{3599, "59:59"},
		{3600, "01:00:00"},
		{3725, "01:02:05"},
		{86399, "23:59:59"},
		{86400, "1:00:00:00"},
		{90000, "1:01:00:00"},
		{-7, "00:00"},
	}
	for _, c := range cases {
		if got := HumanDuration(c.seconds); got != c.want {
			t.Errorf("HumanDuration(%d) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestTagRecordGetSet(t *testing.T) {
	r := NewTagRecord()
	r.Set(KeyTitle, "Harvest Moon")
	r.Set(KeyAlbum, "Harvest Moon")

	if got := r.Get(KeyTitle); got != "Harvest Moon" {
		t.Errorf("Get(TITLE) = %q", got)
	}
	if !r.Has(KeyAlbum) {
		t.Error("Has(ALBUM) = false, want true")
	}
	if r.Has(KeyGenre) {
		t.Error("Has(GENRE) = true for unset key")
	}
	if got := r.Get(KeyGenre); got != "" {
		t.Errorf("Get(GENRE) = %q, want empty", got)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestTagRecordDropsEmptyValues(t *testing.T) {
	r := NewTagRecord()
	r.Set(KeyArtist, "")
	if r.Has(KeyArtist) {
		t.Error("Has(ARTIST) = true after setting empty value")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}
