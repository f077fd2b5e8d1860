package songs

import (
	"path/filepath"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello World", "Hello_World"},
		{"  shir la'shalom!  ", "shir_la_shalom"},
		{"שיר לשלום", "שיר_לשלום"},
		{"a/b\\c:d", "a_b_c_d"},
		{"", "untitled"},
		{"!!!", "untitled"},
		{"already_safe-name", "already_safe-name"},
	}

	for _, tt := range tests {
		if got := SanitizeName(tt.input); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/abc123XYZ_-", "abc123XYZ_-"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://example.com/song.mp3", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := VideoID(tt.url); got != tt.want {
			t.Errorf("VideoID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestCachePathsDeterministic(t *testing.T) {
	song := Song{
		Name:       "Shir La'Shalom",
		URL:        "https://youtu.be/dQw4w9WgXcQ",
		MediaPath:  "/tmp/audio.mp3",
		SourceLang: "en",
	}

	src1, tgt1 := song.CachePaths("/cache")
	src2, tgt2 := song.CachePaths("/cache")
	if src1 != src2 || tgt1 != tgt2 {
		t.Error("cache paths are not deterministic")
	}

	wantSrc := filepath.Join("/cache", "Shir_La_Shalom_dQw4w9WgXcQ_en.srt")
	wantTgt := filepath.Join("/cache", "Shir_La_Shalom_dQw4w9WgXcQ_he.srt")
	if src1 != wantSrc {
		t.Errorf("source path = %q, want %q", src1, wantSrc)
	}
	if tgt1 != wantTgt {
		t.Errorf("target path = %q, want %q", tgt1, wantTgt)
	}
}

func TestIdentifierFallsBackToBasename(t *testing.T) {
	song := Song{
		Name:      "Some Song",
		MediaPath: "/music/My Great Song.mp3",
	}
	if got := song.Identifier(); got != "My_Great_Song" {
		t.Errorf("Identifier() = %q, want %q", got, "My_Great_Song")
	}
}
