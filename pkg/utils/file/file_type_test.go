package fileutil

import "testing"

func TestClassOf(t *testing.T) {
	tests := []struct {
		filename string
		want     TypeClass
	}{
		{"IMG_0001.JPG", ClassImage},
		{"/videos/clip.mkv", ClassVideo},
		{"stream.ts", ClassVideo},
		{"song.flac", ClassAudio},
		{"report.PDF", ClassDocument},
		{"backup.tar.gz", ClassArchive},
		{"main.go", ClassCode},
		{"README", ClassOther},
		{"weird.xyz", ClassOther},
		{"trailing.", ClassOther},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := ClassOf(tt.filename); got != tt.want {
				t.Errorf("ClassOf(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestExtractExtension(t *testing.T) {
	if got := ExtractExtension("/path/to/file.AVI"); got != "avi" {
		t.Errorf("ExtractExtension() = %q, want avi", got)
	}
	if got := ExtractExtension(""); got != "" {
		t.Errorf("ExtractExtension(\"\") = %q, want empty", got)
	}
}
