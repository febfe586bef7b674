package rfc9111

import "strings"

// baseHopByHop are the fields RFC 9111 §3 and RFC 9110 §7.6.1 classify as
// hop-by-hop: scoped to a single connection and never stored or forwarded.
var baseHopByHop = map[string]bool{
	"connection":                true,
	"keep-alive":                true,
	"proxy-authenticate":        true,
	"proxy-authentication-info": true,
}

// StripHopByHop removes hop-by-hop fields from resp, plus every field
// named in the request's or response's own Connection header, per spec
// invariant I5.
func StripHopByHop(resp Headers, connectionHeaderValue string) Headers {
	out := make(Headers, len(resp))
	named := namedInConnection(connectionHeaderValue)
	for k, v := range resp {
		if baseHopByHop[k] || named[k] {
			continue
		}
		out[k] = v
	}
	return out
}

func namedInConnection(value string) map[string]bool {
	named := map[string]bool{}
	if value == "" {
		return named
	}
	for _, tok := range strings.Split(value, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		named[foldKey(tok)] = true
	}
	return named
}
