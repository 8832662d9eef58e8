// ABOUTME: URL rewriting strategies for fetchers
// ABOUTME: Maps marketplace API and CDN hosts onto a local proxy
package fetch

import "strings"

const (
	// GraphQLURL is the marketplace search endpoint
	GraphQLURL = "https://surfaces-graphql.splice.com/graphql"

	// CDNHost serves preview files
	CDNHost = "spliceproduction.s3.us-west-1.amazonaws.com"

	samplesPath = "/audio_samples"
)

// Rewriter maps a request URL to the URL actually fetched
type Rewriter interface {
	Rewrite(url string) string
}

// ProxyRewriter routes the API and CDN through Base, for environments where
// those hosts cannot be reached directly. Other URLs pass through unchanged.
type ProxyRewriter struct {
	Base string
}

// Rewrite returns the proxied URL
func (p ProxyRewriter) Rewrite(url string) string {
	base := strings.TrimSuffix(p.Base, "/")

	if strings.HasPrefix(url, GraphQLURL) {
		return base + "/graphql" + strings.TrimPrefix(url, GraphQLURL)
	}

	if strings.Contains(url, CDNHost) {
		if i := strings.Index(url, samplesPath); i >= 0 {
			return base + url[i:]
		}
	}

	return url
}
