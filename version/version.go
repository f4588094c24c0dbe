// Package version reports the i18n-sheets build: release tag, commit and
// build time. Release builds set them with
//
//	-ldflags "-X github.com/teranos/i18n-sheets/version.Version=v1.2.0 \
//	          -X github.com/teranos/i18n-sheets/version.CommitHash=$(git rev-parse HEAD) \
//	          -X github.com/teranos/i18n-sheets/version.BuildTime=$(date -u +%FT%TZ)"
//
// A plain `go install` leaves them at their defaults; Get then falls back to
// the module version and VCS stamps the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time via ldflags.
var (
	CommitHash = "dev"
	BuildTime  = "unknown"
	Version    = "dev"
)

// Info describes the running binary. It is printed by `i18n-sheets version`
// and sent to the Sheets API as the user agent.
type Info struct {
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the build information, filling unset ldflags values from the
// embedded build info when it is available.
func Get() Info {
	info := Info{
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		Version:    Version,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = withBuildInfo(info, bi)
	}
	return info
}

// withBuildInfo fills defaults left by a build without ldflags. Values set
// through ldflags always win.
func withBuildInfo(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.CommitHash == "dev" {
				info.CommitHash = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		}
	}
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("i18n-sheets %s (commit %s, built %s)", i.Version, i.Short(), i.BuildTime)
}

// Short returns the commit abbreviated to 7 characters.
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}

// UserAgent identifies the tool in Sheets API requests.
func (i Info) UserAgent() string {
	return fmt.Sprintf("i18n-sheets/%s (%s)", i.Version, i.Platform)
}
