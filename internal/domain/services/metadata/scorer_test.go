package metadata

import (
	"strings"
	"testing"
	"time"

	"github.com/easayliu/smart-rename/internal/domain/models/naming"
)

var testModTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)

func descriptor(name string, exif *naming.EXIF) naming.FileDescriptor {
	d := naming.NewFileDescriptor("/data/"+name, 1024, testModTime)
	d.EXIF = exif
	return d
}

func captureEXIF(gps bool) *naming.EXIF {
	capture := time.Date(2023, 7, 4, 18, 15, 0, 0, time.Local)
	return &naming.EXIF{CaptureTime: &capture, HasGPS: gps, Latitude: 31.2, Longitude: 121.5}
}

func TestScoreRules(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		exif      *naming.EXIF
		wantScore float64
		wantName  string
	}{
		{"截图带日期", "Screenshot_2024_01_15_at_2.30.45_PM.png", nil, ScoreScreenshot, "screenshot_2024_01_15_14_30_45"},
		{"GPS和拍摄日期", "IMG_0042.jpg", captureEXIF(true), ScoreGPSAndDate, "2023_07_04_photo_0042"},
		{"拍摄日期和描述词", "family_dinner.jpg", captureEXIF(false), ScoreDateAndTokens, "2023_07_04_family_dinner"},
		{"只有拍摄日期", "DSC_1234.jpg", captureEXIF(false), ScoreDateOnly, "2023_07_04_photo_1234"},
		{"描述词和文件名日期", "beach_sunset_2024-01-15.jpg", nil, ScoreTokensAndDate, "2024_01_15_beach_sunset"},
		{"只有描述词", "quarterly_report.pdf", nil, ScoreTokensOnly, "2024_03_01_quarterly_report"},
		{"信息不足", "IMG_0001.jpg", nil, ScoreInsufficient, "2024_03_01_photo_0001"},
	}

	scorer := NewScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(descriptor(tt.file, tt.exif))
			if got.Value != tt.wantScore {
				t.Errorf("Score(%s) = %v, want %v (%s)", tt.file, got.Value, tt.wantScore, got.Reasoning)
			}
			if got.SuggestedName != tt.wantName {
				t.Errorf("SuggestedName = %q, want %q", got.SuggestedName, tt.wantName)
			}
		})
	}
}

func TestScreenshotScenario(t *testing.T) {
	got := NewScorer().Score(descriptor("Screenshot_2024_01_15_at_2.30.45_PM.png", nil))
	if got.Value < 0.95 {
		t.Fatalf("confidence = %v, want >= 0.95", got.Value)
	}
	if !strings.HasPrefix(got.SuggestedName, "screenshot_2024_01_15") {
		t.Errorf("SuggestedName = %q, want prefix screenshot_2024_01_15", got.SuggestedName)
	}
}

func TestScoreAlwaysInRange(t *testing.T) {
	names := []string{
		"", ".hidden", "a.b.c", "Screenshot.png", "截图 2024-01-15.png",
		"00000000000000.jpg", "IMG_20240230_0001.jpg", "Untitled (7).docx",
	}

	scorer := NewScorer()
	for _, n := range names {
		for _, exif := range []*naming.EXIF{nil, {}, captureEXIF(true)} {
			got := scorer.Score(descriptor(n, exif))
			if got.Value < 0 || got.Value > 1 {
				t.Errorf("Score(%q) = %v out of [0,1]", n, got.Value)
			}
			if got.SuggestedName == "" {
				t.Errorf("Score(%q) returned empty suggested name", n)
			}
		}
	}
}

func TestScreenshotWithoutNameDateUsesModTime(t *testing.T) {
	got := NewScorer().Score(descriptor("Screenshot.png", nil))
	if got.Value == ScoreScreenshot {
		t.Errorf("screenshot without date should not hit the screenshot rule")
	}
	if got.SuggestedName != "screenshot_2024_03_01" {
		t.Errorf("SuggestedName = %q, want screenshot_2024_03_01", got.SuggestedName)
	}
}

func TestSynthesizeFallbacks(t *testing.T) {
	noTime := naming.NewFileDescriptor("/data/___.bin", 10, time.Time{})
	if got := Synthesize(noTime); got != FallbackName {
		t.Errorf("Synthesize(___) = %q, want %q", got, FallbackName)
	}

	digits := naming.NewFileDescriptor("/data/0001.bin", 10, time.Time{})
	if got := Synthesize(digits); got != "0001" {
		t.Errorf("Synthesize(0001) = %q, want 0001", got)
	}

	described := naming.NewFileDescriptor("/data/IMG_0005.jpg", 10, time.Time{})
	capture := time.Date(2022, 5, 6, 0, 0, 0, 0, time.Local)
	described.EXIF = &naming.EXIF{CaptureTime: &capture, Description: "Golden Gate Bridge"}
	if got := Synthesize(described); got != "2022_05_06_golden_gate_bridge_0005" {
		t.Errorf("Synthesize with EXIF description = %q", got)
	}
}

func TestSynthesizeIgnoresTimeSuffix(t *testing.T) {
	desc := naming.NewFileDescriptor("/camera/IMG_20240115_143045.jpg", 10, time.Time{})
	if got := Synthesize(desc); got != "2024_01_15_photo" {
		t.Errorf("Synthesize(IMG_20240115_143045) = %q, want 2024_01_15_photo", got)
	}
}
