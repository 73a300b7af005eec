// Package buildinfo exposes the version stamped into the mizgra binary.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/mmlkg/mizgra/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/mmlkg/mizgra/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/mmlkg/mizgra/pkg/buildinfo.Date=$(date -u +%Y-%m-%d)"
package buildinfo

import "fmt"

// Stamped at link time. Development builds keep the placeholders.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}

// UserAgent is sent with remote RDF requests.
func UserAgent() string {
	return "mizgra/" + Version + " (+https://mmlkg.uwb.edu.pl)"
}
