package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTitle(t *testing.T) {
	testCases := []struct {
		name     string
		title    string
		expected string
	}{
		{
			name:     "clean title unchanged",
			title:    "Test Video",
			expected: "Test Video",
		},
		{
			name:     "strips path separators",
			title:    `a/b\c`,
			expected: "abc",
		},
		{
			name:     "strips all unsafe characters",
			title:    `What? "Quoted": <A|B> *stars*`,
			expected: "What Quoted AB stars",
		},
		{
			name:     "unicode preserved",
			title:    "测试视频 – épisode",
			expected: "测试视频 – épisode",
		},
		{
			name:     "empty title",
			title:    "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SanitizeTitle(tc.title))
		})
	}
}

func TestSegmentFileName(t *testing.T) {
	testCases := []struct {
		name     string
		title    string
		start    float64
		end      float64
		expected string
	}{
		{
			name:     "integral seconds",
			title:    "Test Video",
			start:    10,
			end:      20,
			expected: "Test Video_10-20.mp4",
		},
		{
			name:     "decimal seconds",
			title:    "Test Video",
			start:    1.5,
			end:      2.25,
			expected: "Test Video_1.5-2.25.mp4",
		},
		{
			name:     "zero start",
			title:    "clip",
			start:    0,
			end:      3,
			expected: "clip_0-3.mp4",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SegmentFileName(tc.title, tc.start, tc.end))
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	testCases := []struct {
		value    float64
		expected string
	}{
		{0, "0"},
		{10, "10"},
		{10.5, "10.5"},
		{2.25, "2.25"},
		{0.001, "0.001"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, FormatSeconds(tc.value))
	}
}

func TestSegmentFileNameRoundTrip(t *testing.T) {
	pairs := []struct{ start, end float64 }{
		{10, 20},
		{0, 1},
		{1.5, 2.75},
		{90, 3600},
	}

	for _, p := range pairs {
		name := SegmentFileName("My Video", p.start, p.end)
		start, end, ok := ParseSegmentFileName("My Video", name)
		assert.True(t, ok, "expected %s to parse", name)
		assert.Equal(t, p.start, start)
		assert.Equal(t, p.end, end)
	}
}

func TestParseSegmentFileNameRejectsMalformed(t *testing.T) {
	testCases := []struct {
		name     string
		filename string
	}{
		{"wrong title prefix", "Other Video_10-20.mp4"},
		{"wrong extension", "My Video_10-20.wav"},
		{"missing range separator", "My Video_1020.mp4"},
		{"non-numeric range", "My Video_a-b.mp4"},
		{"negative start", "My Video_-5-20.mp4"},
		{"exponent notation", "My Video_1e2-200.mp4"},
		{"empty range", "My Video_-.mp4"},
		{"original file itself", "My Video.mp4"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, ok := ParseSegmentFileName("My Video", tc.filename)
			assert.False(t, ok)
		})
	}
}

func TestParseSegmentFileNameUsesBaseName(t *testing.T) {
	start, end, ok := ParseSegmentFileName("My Video", "/tmp/downloads/My Video_5-15.mp4")
	assert.True(t, ok)
	assert.Equal(t, 5.0, start)
	assert.Equal(t, 15.0, end)
}

func TestIsOwnedSegment(t *testing.T) {
	assert.True(t, IsOwnedSegment("My Video", "My Video_10-20.mp4"))
	assert.False(t, IsOwnedSegment("My Video", "My Video.mp4"))
	assert.False(t, IsOwnedSegment("My Video", "vocal_removed.wav"))
}
