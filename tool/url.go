package tool

import (
	"fmt"
	"net/url"
)

// BuildPublicURL joins the tunnel base address, the session slug and a
// percent-encoded public name into the externally reachable URL. When the
// tunnel is down (base empty) the result is the absolute path only; it
// becomes reachable as soon as a TunnelReady event delivers the base.
func BuildPublicURL(base, slug, encodedName string) string {
	return fmt.Sprintf("%s/%s/%s", base, slug, encodedName)
}

// EncodePublicName percent-encodes a public file name for use in a URL path.
func EncodePublicName(name string) string {
	return url.PathEscape(name)
}
