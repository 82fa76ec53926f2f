package gophrase

import "runtime"

// Name is the application name.
const Name = "gophrase"

// Build metadata, stamped by the release build:
//
//	go build -ldflags "-X github.com/ZaguanLabs/gophrase.Version=1.2.0 \
//	  -X github.com/ZaguanLabs/gophrase.GitCommit=$(git rev-parse HEAD) \
//	  -X github.com/ZaguanLabs/gophrase.BuildDate=$(date -u +%F)" ./cmd/gophrase
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildDate = ""
)

// FullVersion returns Version with the short commit appended when known,
// e.g. "1.2.0+0123456".
func FullVersion() string {
	if GitCommit == "" {
		return Version
	}
	short := GitCommit
	if len(short) > 7 {
		short = short[:7]
	}
	return Version + "+" + short
}

// VersionInfo is the banner printed by `gophrase version`.
func VersionInfo() string {
	s := Name + " " + FullVersion()
	if BuildDate != "" {
		s += " (built " + BuildDate + ")"
	}
	return s + " " + runtime.Version()
}
