package execute

import (
	"slices"
	"testing"
)

func TestSplitParamsKeepsPlaceholders(t *testing.T) {
	cases := []struct {
		params string
		want   []string
	}{
		{"#{in} #{out}", []string{"#{in}", "#{out}"}},
		{"-i #{in} -y #{out}", []string{"-i", "#{in}", "-y", "#{out}"}},
		{"--name=#{id} '#{in}'", []string{"--name=#{id}", "#{in}"}},
		{`-vf "scale=1280:-2" #{out}`, []string{"-vf", "scale=1280:-2", "#{out}"}},
		{"", nil},
	}
	for _, tc := range cases {
		got, err := splitParams(tc.params)
		if err != nil {
			t.Fatalf("splitParams(%q): %v", tc.params, err)
		}
		if !slices.Equal(got, tc.want) {
			t.Fatalf("splitParams(%q) = %q, want %q", tc.params, got, tc.want)
		}
	}
}

func TestSplitParamsThenSubstitute(t *testing.T) {
	params, err := splitParams("-i #{in} -y #{out}")
	if err != nil {
		t.Fatalf("splitParams: %v", err)
	}
	args, err := substitute(params, "/media/in.mp4", "/staging/out.mp4", "track-1")
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}
	want := []string{"-i", "/media/in.mp4", "-y", "/staging/out.mp4"}
	if !slices.Equal(args, want) {
		t.Fatalf("args = %q, want %q", args, want)
	}
}
