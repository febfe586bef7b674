package rfc9111

import "strings"

// VaryNamesFrom splits a response's raw Vary field into normalized
// (lowercased) header names, skipping "*" and blanks. A response whose
// Vary contains "*" is handled separately by CanStore (spec invariant I2);
// this helper is also used by the insertion path to build entry.Vary.
func VaryNamesFrom(varyHeader string) []string {
	if varyHeader == "" {
		return nil
	}
	var names []string
	for _, tok := range strings.Split(varyHeader, ",") {
		name := trimASCIISpace(tok)
		if name == "" || name == "*" {
			continue
		}
		names = append(names, foldKey(name))
	}
	return names
}

// BuildVary captures the request's values for each vary-named header at
// storage time, per spec §3's vary field semantics.
func BuildVary(varyHeader string, request Headers) map[string]string {
	names := VaryNamesFrom(varyHeader)
	if len(names) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(names))
	for _, name := range names {
		out[name] = request.Get(name)
	}
	return out
}

// VaryMatches reports whether the request's current header values match
// the stored entry's vary snapshot exactly, per spec §4.7 step 5.
func VaryMatches(entryVary map[string]string, request Headers) bool {
	for name, stored := range entryVary {
		if request.Get(name) != stored {
			return false
		}
	}
	return true
}
