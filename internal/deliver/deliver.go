// Package deliver validates delivery settings and expands output naming
// templates.
//
// Validation runs on submit intent only; callers must not validate on every
// keystroke. Every failure names its field with a specific message, never a
// generic "invalid".
package deliver

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mediaproxy/internal/config"
	"mediaproxy/internal/media/format"
)

// VideoSettings selects the delivered video stream encoding.
type VideoSettings struct {
	Codec string `json:"codec"`
}

// AudioSettings selects the delivered audio stream encoding.
type AudioSettings struct {
	Codec string `json:"codec"`
}

// FileSettings selects the delivered container and file naming.
type FileSettings struct {
	Container      string `json:"container"`
	NamingTemplate string `json:"naming_template"`
}

// Settings is the full delivery configuration attached to a job.
type Settings struct {
	Video     VideoSettings `json:"video"`
	Audio     AudioSettings `json:"audio"`
	File      FileSettings  `json:"file"`
	OutputDir string        `json:"output_dir"`
}

var videoCodecs = map[string]struct{}{
	"h264":   {},
	"hevc":   {},
	"prores": {},
	"dnxhd":  {},
}

var audioCodecs = map[string]struct{}{
	"aac":  {},
	"pcm":  {},
	"mp3":  {},
	"opus": {},
}

var deliveryContainers = map[string]struct{}{
	"mp4": {},
	"mov": {},
	"mxf": {},
	"mkv": {},
}

// FieldError names exactly which setting is wrong and why.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func sortedKeys(set map[string]struct{}) string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

// ApplyDefaults fills empty fields from configured delivery defaults.
func (s *Settings) ApplyDefaults(cfg *config.Config) {
	if s.Video.Codec == "" {
		s.Video.Codec = cfg.Deliver.VideoCodec
	}
	if s.Audio.Codec == "" {
		s.Audio.Codec = cfg.Deliver.AudioCodec
	}
	if s.File.Container == "" {
		s.File.Container = cfg.Deliver.Container
	}
	if s.File.NamingTemplate == "" {
		s.File.NamingTemplate = cfg.Deliver.NamingTemplate
	}
	if s.OutputDir == "" {
		s.OutputDir = cfg.Paths.OutputDir
	}
}

// Validate checks every field and returns one error per failing field.
// An empty result means the settings are deliverable.
func (s Settings) Validate() []FieldError {
	var errs []FieldError

	codec := strings.ToLower(strings.TrimSpace(s.Video.Codec))
	switch {
	case codec == "":
		errs = append(errs, FieldError{Field: "video.codec", Message: "video codec is required"})
	default:
		if _, ok := videoCodecs[codec]; !ok {
			errs = append(errs, FieldError{
				Field:   "video.codec",
				Message: fmt.Sprintf("video codec %q is not deliverable; choose one of %s", s.Video.Codec, sortedKeys(videoCodecs)),
			})
		}
	}

	audio := strings.ToLower(strings.TrimSpace(s.Audio.Codec))
	switch {
	case audio == "":
		errs = append(errs, FieldError{Field: "audio.codec", Message: "audio codec is required"})
	default:
		if _, ok := audioCodecs[audio]; !ok {
			errs = append(errs, FieldError{
				Field:   "audio.codec",
				Message: fmt.Sprintf("audio codec %q is not deliverable; choose one of %s", s.Audio.Codec, sortedKeys(audioCodecs)),
			})
		}
	}

	container := strings.ToLower(strings.TrimSpace(s.File.Container))
	switch {
	case container == "":
		errs = append(errs, FieldError{Field: "file.container", Message: "delivery container is required"})
	default:
		if _, ok := deliveryContainers[container]; !ok {
			errs = append(errs, FieldError{
				Field:   "file.container",
				Message: fmt.Sprintf("container %q is not deliverable; choose one of %s", s.File.Container, sortedKeys(deliveryContainers)),
			})
		}
	}

	if template := strings.TrimSpace(s.File.NamingTemplate); template == "" {
		errs = append(errs, FieldError{Field: "file.naming_template", Message: "naming template is required"})
	} else if err := checkTemplate(template); err != nil {
		errs = append(errs, FieldError{Field: "file.naming_template", Message: err.Error()})
	}

	if strings.TrimSpace(s.OutputDir) == "" {
		errs = append(errs, FieldError{Field: "output_dir", Message: "output directory is required"})
	}

	return errs
}

// MarshalJSONString serializes settings for queue storage.
func (s Settings) MarshalJSONString() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal deliver settings: %w", err)
	}
	return string(data), nil
}

// ParseSettings decodes queue-stored settings JSON.
func ParseSettings(raw string) (Settings, error) {
	var settings Settings
	if strings.TrimSpace(raw) == "" {
		return settings, nil
	}
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return Settings{}, fmt.Errorf("parse deliver settings: %w", err)
	}
	return settings, nil
}

var templateTokens = map[string]struct{}{
	"source":    {},
	"title":     {},
	"container": {},
	"codec":     {},
}

func checkTemplate(template string) error {
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			return nil
		}
		closeIdx := strings.IndexByte(rest[open:], '}')
		if closeIdx < 0 {
			return fmt.Errorf("naming template has an unclosed token at %q", rest[open:])
		}
		token := rest[open+1 : open+closeIdx]
		if _, ok := templateTokens[token]; !ok {
			return fmt.Errorf("naming template token %q is not recognized; known tokens: %s", token, sortedKeys(templateTokens))
		}
		rest = rest[open+closeIdx+1:]
	}
}

var titleCaser = cases.Title(language.Und)

// ExpandTemplate substitutes naming tokens for a source file:
// {source} is the source basename without extension, {title} its
// title-cased form, {container} the delivery container, {codec} the
// delivery video codec. The delivery container extension is appended.
func ExpandTemplate(template string, sourcePath string, settings Settings) string {
	base := filepath.Base(sourcePath)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}

	title := titleCaser.String(strings.NewReplacer("_", " ", "-", " ").Replace(base))

	replacer := strings.NewReplacer(
		"{source}", base,
		"{title}", title,
		"{container}", strings.ToLower(settings.File.Container),
		"{codec}", strings.ToLower(settings.Video.Codec),
	)
	name := replacer.Replace(template)

	container := format.ParseContainer(settings.File.Container)
	if container != format.ContainerUnknown {
		name += "." + container.String()
	}
	return name
}
