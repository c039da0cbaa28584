package format_test

import (
	"testing"

	"mediaproxy/internal/media/format"
)

func TestParseContainer(t *testing.T) {
	cases := []struct {
		input    string
		expected format.Container
	}{
		{"mp4", format.ContainerMP4},
		{"MP4", format.ContainerMP4},
		{"quicktime", format.ContainerMOV},
		{"matroska", format.ContainerMKV},
		{"webm", format.ContainerWebM},
		{"mxf", format.ContainerMXF},
		{"braw", format.ContainerRAW},
		{"r3d", format.ContainerRAW},
		{"", format.ContainerUnknown},
		{"tarball", format.ContainerUnknown},
	}
	for _, tc := range cases {
		if got := format.ParseContainer(tc.input); got != tc.expected {
			t.Errorf("ParseContainer(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestParseCodec(t *testing.T) {
	cases := []struct {
		input    string
		expected format.Codec
	}{
		{"h264", format.CodecH264},
		{"avc1", format.CodecH264},
		{"hevc", format.CodecHEVC},
		{"h265", format.CodecHEVC},
		{"vp9", format.CodecVP9},
		{"av1", format.CodecAV1},
		{"prores", format.CodecProRes},
		{"", format.CodecUnknown},
		{"cinepak", format.CodecUnknown},
	}
	for _, tc := range cases {
		if got := format.ParseCodec(tc.input); got != tc.expected {
			t.Errorf("ParseCodec(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestContainerFromPath(t *testing.T) {
	if got := format.ContainerFromPath("/media/clip.MOV"); got != format.ContainerMOV {
		t.Fatalf("expected mov container, got %v", got)
	}
	if got := format.ContainerFromPath("/media/clip"); got != format.ContainerUnknown {
		t.Fatalf("expected unknown container for missing extension, got %v", got)
	}
}

func TestPlaybackSupported(t *testing.T) {
	cases := []struct {
		name      string
		container format.Container
		codec     format.Codec
		supported bool
	}{
		{"mp4 h264", format.ContainerMP4, format.CodecH264, true},
		{"webm vp9", format.ContainerWebM, format.CodecVP9, true},
		{"mov av1", format.ContainerMOV, format.CodecAV1, true},
		{"mxf any codec", format.ContainerMXF, format.CodecH264, false},
		{"mkv hevc", format.ContainerMKV, format.CodecHEVC, false},
		{"mp4 prores", format.ContainerMP4, format.CodecProRes, false},
		{"unknown container", format.ContainerUnknown, format.CodecH264, false},
		{"unknown codec", format.ContainerMP4, format.CodecUnknown, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := format.PlaybackSupported(tc.container, tc.codec); got != tc.supported {
				t.Fatalf("PlaybackSupported(%v, %v) = %v, want %v", tc.container, tc.codec, got, tc.supported)
			}
		})
	}
}
