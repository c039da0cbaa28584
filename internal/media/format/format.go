package format

import (
	"path/filepath"
	"strings"
)

// Container identifies a media container family.
type Container int

const (
	ContainerUnknown Container = iota
	ContainerMP4
	ContainerM4V
	ContainerMOV
	ContainerWebM
	ContainerMKV
	ContainerMXF
	ContainerAVI
	ContainerRAW
)

// Codec identifies a video codec family.
type Codec int

const (
	CodecUnknown Codec = iota
	CodecH264
	CodecHEVC
	CodecVP8
	CodecVP9
	CodecAV1
	CodecProRes
	CodecDNxHD
	CodecMPEG2
)

var containerNames = map[Container]string{
	ContainerUnknown: "unknown",
	ContainerMP4:     "mp4",
	ContainerM4V:     "m4v",
	ContainerMOV:     "mov",
	ContainerWebM:    "webm",
	ContainerMKV:     "mkv",
	ContainerMXF:     "mxf",
	ContainerAVI:     "avi",
	ContainerRAW:     "raw",
}

var codecNames = map[Codec]string{
	CodecUnknown: "unknown",
	CodecH264:    "h264",
	CodecHEVC:    "hevc",
	CodecVP8:     "vp8",
	CodecVP9:     "vp9",
	CodecAV1:     "av1",
	CodecProRes:  "prores",
	CodecDNxHD:   "dnxhd",
	CodecMPEG2:   "mpeg2",
}

func (c Container) String() string {
	if name, ok := containerNames[c]; ok {
		return name
	}
	return "unknown"
}

func (c Codec) String() string {
	if name, ok := codecNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseContainer maps a container name (as reported by a prober or inferred
// from an extension) onto the closed enumeration. Unrecognized values map to
// ContainerUnknown rather than an error; unknown is a legitimate state while
// a source awaits validation.
func ParseContainer(value string) Container {
	switch normalize(value) {
	case "mp4", "mpeg4":
		return ContainerMP4
	case "m4v":
		return ContainerM4V
	case "mov", "quicktime":
		return ContainerMOV
	case "webm":
		return ContainerWebM
	case "mkv", "matroska":
		return ContainerMKV
	case "mxf":
		return ContainerMXF
	case "avi":
		return ContainerAVI
	case "braw", "r3d", "ari", "arx", "crm", "nev":
		return ContainerRAW
	default:
		return ContainerUnknown
	}
}

// ParseCodec maps a codec name onto the closed enumeration.
func ParseCodec(value string) Codec {
	switch normalize(value) {
	case "h264", "avc", "avc1":
		return CodecH264
	case "hevc", "h265", "hvc1", "hev1":
		return CodecHEVC
	case "vp8":
		return CodecVP8
	case "vp9":
		return CodecVP9
	case "av1":
		return CodecAV1
	case "prores":
		return CodecProRes
	case "dnxhd", "dnxhr":
		return CodecDNxHD
	case "mpeg2", "mpeg2video":
		return CodecMPEG2
	default:
		return CodecUnknown
	}
}

// ContainerFromPath infers a container from a file extension.
func ContainerFromPath(path string) Container {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return ParseContainer(ext)
}

// PlaybackSupported reports whether the container/codec pair can be honestly
// rendered by a native playback element. Unknown values always fail: an
// unvalidated source never earns speculative playback.
func PlaybackSupported(container Container, codec Codec) bool {
	switch container {
	case ContainerMP4, ContainerM4V, ContainerMOV, ContainerWebM:
	default:
		return false
	}
	switch codec {
	case CodecH264, CodecHEVC, CodecVP8, CodecVP9, CodecAV1:
		return true
	default:
		return false
	}
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
