package websocket

import (
	"net/url"
	"strings"
)

// parseURI splits a "ws://host[:port]/path" URI into the host (with a
// default port of 80 applied, suitable for a Host header and for dialing)
// and the resource path (defaulting to "/"). "wss://" is rejected: this
// engine never negotiates TLS.
func parseURI(uri string) (host, path string, err *Error) {
	u, e := url.Parse(uri)
	if e != nil {
		return "", "", wrapErr(ErrInvalidArgs, "failed to parse URI", e)
	}
	switch u.Scheme {
	case "ws":
	case "wss":
		return "", "", newErr(ErrInvalidArgs, "wss:// is not supported")
	default:
		return "", "", newErr(ErrInvalidArgs, "URI scheme must be ws://")
	}
	if u.Host == "" {
		return "", "", newErr(ErrInvalidArgs, "URI is missing a host")
	}

	host = u.Host
	if u.Port() == "" {
		host += ":80"
	}

	path = u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return host, path, nil
}
