package version

import "testing"

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	if info.Version == "" || info.GitCommit == "" || info.BuildDate == "" {
		t.Fatalf("expected non-empty version info")
	}
}

func TestGetShortCommitAndString(t *testing.T) {
	prevCommit, prevVersion, prevDate := GitCommit, Version, BuildDate
	t.Cleanup(func() { GitCommit, Version, BuildDate = prevCommit, prevVersion, prevDate })

	GitCommit = "abcdef123456"
	Version = "v1.2.3"
	BuildDate = "2024-03-01"
	if GetShortCommit() != "abcdef1" {
		t.Fatalf("expected short commit")
	}
	if got := String("lookout"); got != "lookout v1.2.3 (commit abcdef1, built 2024-03-01)" {
		t.Fatalf("unexpected version string %q", got)
	}

	GitCommit = "abc"
	if GetShortCommit() != "abc" {
		t.Fatalf("expected short commit to be kept as-is")
	}
}
