package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Stream codec types reported by ffprobe.
const (
	CodecTypeVideo    = "video"
	CodecTypeAudio    = "audio"
	CodecTypeSubtitle = "subtitle"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index       int               `json:"index"`
	CodecName   string            `json:"codec_name"`
	CodecType   string            `json:"codec_type"`
	Duration    string            `json:"duration"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Channels    int               `json:"channels"`
	Disposition map[string]int    `json:"disposition"`
	Tags        map[string]string `json:"tags"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return Parse(stdout.Bytes())
}

// Parse decodes ffprobe JSON output.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// StreamCount returns the number of streams with the given codec type.
func (r Result) StreamCount(codecType string) int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, codecType) {
			count++
		}
	}
	return count
}

// HasVideo reports at least one video stream that is not an attached picture
// such as cover art.
func (r Result) HasVideo() bool {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, CodecTypeVideo) && stream.Disposition["attached_pic"] == 0 {
			return true
		}
	}
	return false
}

// HasAudio reports at least one audio stream.
func (r Result) HasAudio() bool {
	return r.StreamCount(CodecTypeAudio) > 0
}

// HasSubtitle reports at least one subtitle stream.
func (r Result) HasSubtitle() bool {
	return r.StreamCount(CodecTypeSubtitle) > 0
}

// DurationSeconds returns the container duration in seconds, or 0 when
// unavailable or malformed.
func (r Result) DurationSeconds() float64 {
	d := parseFloat(r.Format.Duration)
	if math.IsNaN(d) || d < 0 {
		return 0
	}
	return d
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

// BitRate returns the container bitrate in bits per second, or 0 when unavailable.
func (r Result) BitRate() int64 {
	rate := parseFloat(r.Format.BitRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int64(rate)
}

var formatMimeTypes = []struct {
	format string
	video  string
	audio  string
}{
	{"mp4", "video/mp4", "audio/mp4"},
	{"matroska", "video/x-matroska", "audio/x-matroska"},
	{"webm", "video/webm", "audio/webm"},
	{"mpegts", "video/mp2t", "video/mp2t"},
	{"ogg", "video/ogg", "audio/ogg"},
	{"mp3", "audio/mpeg", "audio/mpeg"},
	{"flac", "audio/flac", "audio/flac"},
	{"wav", "audio/wav", "audio/wav"},
	{"webvtt", "text/vtt", "text/vtt"},
	{"srt", "application/x-subrip", "application/x-subrip"},
}

// MimeType guesses a MIME type from the container format name.
func (r Result) MimeType() string {
	names := strings.Split(strings.ToLower(r.Format.FormatName), ",")
	for _, candidate := range formatMimeTypes {
		for _, name := range names {
			if strings.TrimSpace(name) != candidate.format {
				continue
			}
			if r.HasVideo() {
				return candidate.video
			}
			return candidate.audio
		}
	}
	return ""
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
