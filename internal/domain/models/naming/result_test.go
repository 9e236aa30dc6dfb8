package naming

import (
	"math"
	"testing"
	"time"
)

func TestNewConfidenceScoreClamps(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"负数", -0.5, 0},
		{"超过1", 1.7, 1},
		{"NaN", math.NaN(), 0},
		{"正常值", 0.42, 0.42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewConfidenceScore(tt.value, "", "")
			if got.Value != tt.want {
				t.Errorf("Value = %v, want %v", got.Value, tt.want)
			}
		})
	}
}

func TestResultSuggestedFileName(t *testing.T) {
	r := &Result{SuggestedName: "beach_sunset_001", Extension: ".jpg"}
	if got := r.SuggestedFileName(); got != "beach_sunset_001.jpg" {
		t.Errorf("SuggestedFileName() = %q", got)
	}

	empty := &Result{Extension: ".jpg"}
	if got := empty.SuggestedFileName(); got != "" {
		t.Errorf("empty SuggestedFileName() = %q, want empty", got)
	}
}

func TestResultCloneIsDeep(t *testing.T) {
	r := &Result{OriginalPath: "/a.jpg"}
	r.AddUsage(StageUsage{Stage: StagePremium, TotalTokens: 40})

	cp := r.Clone()
	cp.Usage[0].TotalTokens = 99

	if r.Usage[0].TotalTokens != 40 {
		t.Fatalf("clone shares usage slice with original")
	}
	if r.TokensUsed != 40 {
		t.Errorf("TokensUsed = %d, want 40", r.TokensUsed)
	}
}

func TestFileDescriptorHelpers(t *testing.T) {
	mod := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	d := NewFileDescriptor("/photos/IMG_0001.JPG", 2048, mod)

	if d.Extension != ".jpg" {
		t.Errorf("Extension = %q, want .jpg", d.Extension)
	}
	if d.Stem() != "IMG_0001" {
		t.Errorf("Stem() = %q", d.Stem())
	}
	if !d.BestTime().Equal(mod) {
		t.Errorf("BestTime() without EXIF should be ModTime")
	}

	capture := time.Date(2023, 7, 4, 18, 0, 0, 0, time.UTC)
	d.EXIF = &EXIF{CaptureTime: &capture}
	if !d.BestTime().Equal(capture) {
		t.Errorf("BestTime() should prefer EXIF capture time")
	}
}
