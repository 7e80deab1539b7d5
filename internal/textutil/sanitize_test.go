package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"  out.mp4 ":       "out.mp4",
		"a/b\\c:d*e.txt":   "a-b-c-d-e.txt",
		`what?"<>|.srt`:    "what.srt",
		"..":               "",
		"   ":              "",
		"../../etc/passwd": "..-..-etc-passwd",
	}
	for input, want := range cases {
		if got := SanitizeFileName(input); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := map[string]string{
		"Execute":      "execute",
		"mp 1/track#2": "mp_1_track_2",
		"__":           "unknown",
		"":             "unknown",
	}
	for input, want := range cases {
		if got := SanitizeToken(input); got != want {
			t.Fatalf("SanitizeToken(%q) = %q, want %q", input, got, want)
		}
	}
}
