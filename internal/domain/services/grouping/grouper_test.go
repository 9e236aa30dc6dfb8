package grouping

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/easayliu/smart-rename/internal/domain/models/naming"
)

var day = time.Date(2024, 1, 15, 10, 0, 0, 0, time.Local)

func file(path string, size int64, mod time.Time) naming.FileDescriptor {
	return naming.NewFileDescriptor(path, size, mod)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "g" + strconv.Itoa(n)
	}
}

func TestGroupBucketsAndOrder(t *testing.T) {
	files := []naming.FileDescriptor{
		file("/photos/IMG_001.jpg", 500*1024, day),
		file("/photos/notes.pdf", 500*1024, day),
		file("/photos/IMG_002.jpg", 600*1024, day.Add(time.Hour)),
		file("/photos/IMG_003.jpg", 5*mb, day),                      // 大小区间不同
		file("/other/IMG_004.jpg", 500*1024, day),                   // 目录不同
		file("/photos/IMG_005.jpg", 500*1024, day.AddDate(0, 0, 1)), // 日期不同
		file("/photos/IMG_006.jpg", 700*1024, day.Add(2*time.Hour)),
	}

	groups := NewGrouper(WithIDGenerator(sequentialIDs())).Group(files)

	if len(groups) != 5 {
		t.Fatalf("len(groups) = %d, want 5", len(groups))
	}

	first := groups[0]
	if first.ID != "g1" || first.Representative.Path != "/photos/IMG_001.jpg" {
		t.Fatalf("first group = %s rep %s", first.ID, first.Representative.Path)
	}
	if len(first.Siblings) != 2 || first.Siblings[0].Path != "/photos/IMG_002.jpg" || first.Siblings[1].Path != "/photos/IMG_006.jpg" {
		t.Errorf("siblings not in input order: %+v", first.Siblings)
	}
	if first.Bucket.TypeClass != "image" || first.Bucket.SizeRange != "<1MB" || first.Bucket.Directory != "/photos" {
		t.Errorf("unexpected bucket: %+v", first.Bucket)
	}
	if !first.Bucket.DateTo.Equal(day.Add(2 * time.Hour)) {
		t.Errorf("DateTo = %v, want %v", first.Bucket.DateTo, day.Add(2*time.Hour))
	}

	if groups[1].Representative.Path != "/photos/notes.pdf" {
		t.Errorf("group order should follow first appearance, got %s", groups[1].Representative.Path)
	}

	total := 0
	for _, g := range groups {
		total += g.Size()
	}
	if total != len(files) {
		t.Errorf("groups cover %d files, want %d", total, len(files))
	}
}

func TestSizeRange(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "<1MB"},
		{mb - 1, "<1MB"},
		{mb, "<10MB"},
		{10 * mb, "<100MB"},
		{100 * mb, ">=100MB"},
	}
	for _, tt := range tests {
		if got := SizeRange(tt.size); got != tt.want {
			t.Errorf("SizeRange(%d) = %s, want %s", tt.size, got, tt.want)
		}
	}
}

func TestExtractPattern(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"beach_sunset_001", "beach_sunset_[n]"},
		{"invoice_2024_01_15_acme", "invoice_[date]_acme"},
		{"team_meeting_notes", "team_meeting_notes_[n]"},
		{"scan_12", "scan_12_[n]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractPattern(tt.name)
			if got != tt.want {
				t.Errorf("ExtractPattern(%q) = %q, want %q", tt.name, got, tt.want)
			}
			if strings.Count(got, PlaceholderNumber) > 1 || strings.Count(got, PlaceholderDate) > 1 {
				t.Errorf("pattern %q has repeated placeholders", got)
			}
		})
	}
}

func TestApplyPatternScenario(t *testing.T) {
	g := NewGrouper()
	pattern := ExtractPattern("beach_sunset_001")
	if pattern != "beach_sunset_[n]" {
		t.Fatalf("pattern = %q", pattern)
	}
	if got := g.ApplyPattern(pattern, 0, "IMG_002.jpg"); got != "beach_sunset_002" {
		t.Errorf("ApplyPattern() = %q, want beach_sunset_002", got)
	}
}

func TestApplyPatternNumberPosition(t *testing.T) {
	g := NewGrouper()
	pattern := ExtractPattern("holiday_123")

	for _, i := range []int{0, 1, 7, 97, 98, 500, 5000} {
		got := g.ApplyPattern(pattern, i, "whatever.jpg")
		num := strings.TrimPrefix(got, "holiday_")
		if num == got {
			t.Fatalf("prefix lost: %q", got)
		}
		if len(num) < 3 {
			t.Errorf("i=%d: %q is not zero-padded to 3 digits", i, num)
		}
		if num != fmt.Sprintf("%03d", i+2) {
			t.Errorf("i=%d: got %q, want %03d", i, num, i+2)
		}
	}
}

func TestApplyPatternDate(t *testing.T) {
	fixed := time.Date(2025, 6, 30, 12, 0, 0, 0, time.Local)
	g := NewGrouper(WithClock(func() time.Time { return fixed }))
	pattern := ExtractPattern("invoice_2024_01_15")

	if got := g.ApplyPattern(pattern, 0, "scan-2024-02-03.pdf"); got != "invoice_2024_02_03" {
		t.Errorf("sibling date = %q, want invoice_2024_02_03", got)
	}
	if got := g.ApplyPattern(pattern, 0, "scan.pdf"); got != "invoice_2025_06_30" {
		t.Errorf("clock date = %q, want invoice_2025_06_30", got)
	}
}

func TestTrusted(t *testing.T) {
	if !Trusted(0.7, DefaultTrustThreshold) {
		t.Errorf("0.7 should be trusted")
	}
	if Trusted(0.69, DefaultTrustThreshold) {
		t.Errorf("0.69 should not be trusted")
	}
}
