// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

// Build info, set with -ldflags "-X github.com/papercomputeco/gemcli/pkg/utils.Version=..."
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// UserAgent identifies gemcli in outgoing HTTP requests.
func UserAgent() string {
	return "gemcli/" + Version
}
