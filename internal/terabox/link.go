// Package terabox validates TeraBox share links and resolves them into
// direct media URLs through a third-party resolution endpoint.
package terabox

import (
	"strings"

	"github.com/samber/lo"
)

// Domains are the substrings that identify a TeraBox share link.
var Domains = []string{"terabox.com", "terabox.app"}

// IsValidLink reports whether link contains one of Domains.
// No parsing or normalization is done: matching is case-sensitive.
func IsValidLink(link string) bool {
	return lo.SomeBy(Domains, func(d string) bool {
		return strings.Contains(link, d)
	})
}
