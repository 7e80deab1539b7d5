package ffprobe

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const sampleOutput = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080, "disposition": {"attached_pic": 0}},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "channels": 2},
    {"index": 2, "codec_name": "mov_text", "codec_type": "subtitle"}
  ],
  "format": {"filename": "out.mp4", "nb_streams": 3, "duration": "123.45", "size": "1000", "bit_rate": "32000", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}`

func TestParseAndHelpers(t *testing.T) {
	result, err := Parse([]byte(sampleOutput))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !result.HasVideo() || !result.HasAudio() || !result.HasSubtitle() {
		t.Fatalf("expected all stream kinds, got %+v", result.Streams)
	}
	if result.StreamCount(CodecTypeAudio) != 1 {
		t.Fatalf("unexpected audio count %d", result.StreamCount(CodecTypeAudio))
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 || result.BitRate() != 32000 {
		t.Fatalf("unexpected size/bitrate %d/%d", result.SizeBytes(), result.BitRate())
	}
	if result.MimeType() != "video/mp4" {
		t.Fatalf("unexpected mime type %q", result.MimeType())
	}
}

func TestCoverArtIsNotVideo(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio"},
			{CodecType: "video", Disposition: map[string]int{"attached_pic": 1}},
		},
		Format: Format{FormatName: "mp3"},
	}
	if result.HasVideo() {
		t.Fatal("attached pictures must not count as video")
	}
	if result.MimeType() != "audio/mpeg" {
		t.Fatalf("unexpected mime type %q", result.MimeType())
	}
}

func TestHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad", Size: "-1", BitRate: "nope", FormatName: "unknown"}}
	if result.DurationSeconds() != 0 || result.SizeBytes() != 0 || result.BitRate() != 0 {
		t.Fatalf("expected zero values, got %v %d %d", result.DurationSeconds(), result.SizeBytes(), result.BitRate())
	}
	if result.MimeType() != "" {
		t.Fatalf("expected empty mime type, got %q", result.MimeType())
	}
}

func TestInspectRunsBinary(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "fake-ffprobe")
	script := "#!/bin/sh\ncat <<'JSON'\n" + sampleOutput + "\nJSON\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	result, err := Inspect(context.Background(), stub, "/media/out.mp4")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(result.Streams) != 3 {
		t.Fatalf("unexpected streams %+v", result.Streams)
	}

	failing := filepath.Join(dir, "failing-ffprobe")
	if err := os.WriteFile(failing, []byte("#!/bin/sh\necho 'no such file' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	if _, err := Inspect(context.Background(), failing, "/missing"); err == nil {
		t.Fatal("expected error from failing ffprobe")
	}
	if _, err := Inspect(context.Background(), stub, "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
