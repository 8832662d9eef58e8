// ABOUTME: Version information for splicedd
// ABOUTME: Reported by the CLI and sent as the default User-Agent
package version

// Version is overridden at build time with -ldflags "-X ...version.Version=..."
var Version = "0.1.0"

// Product names the tool in the User-Agent
const Product = "splicedd"

// UserAgent returns the HTTP User-Agent for preview downloads
func UserAgent() string {
	return Product + "/" + Version
}
