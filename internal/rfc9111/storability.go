package rfc9111

// understoodStatusCodes is the recognized set from spec §4.4 rule 7: when
// must-understand (or the forced equivalent) is in play, only these
// statuses may be stored.
var understoodStatusCodes = map[int]bool{
	200: true, 201: true, 202: true, 203: true, 204: true, 205: true,
	300: true, 301: true, 302: true, 303: true, 304: true, 307: true, 308: true,
	400: true, 401: true, 403: true, 404: true, 405: true, 406: true, 407: true,
	408: true, 410: true, 411: true, 412: true, 413: true, 414: true, 415: true,
	417: true, 421: true, 426: true, 451: true,
	500: true, 501: true, 502: true, 503: true, 504: true, 505: true, 506: true,
}

// heuristicallyCacheable is the status set from spec §4.4 rule 8 that may be
// stored absent any other explicit freshness signal.
var heuristicallyCacheable = map[int]bool{
	200: true, 203: true, 204: true, 300: true, 301: true, 308: true,
	404: true, 405: true, 410: true, 414: true, 451: true, 501: true,
}

// StorabilityInputs mirrors spec §4.4's parameter list for can_store.
type StorabilityInputs struct {
	Shared               bool
	Method               string
	Status               int
	HasAuthorization     bool
	ResponseCacheControl Directives
	HasExpires           bool
	Vary                 string
	ForceMustUnderstand  bool
}

// CanStore decides whether a response may be stored at all, per spec §4.4.
// All eight conditions must hold.
func CanStore(in StorabilityInputs) bool {
	if in.Status < 200 || in.Status > 599 {
		return false
	}
	if in.Method != "GET" && in.Method != "HEAD" {
		return false
	}
	if varyContainsStar(in.Vary) {
		return false
	}
	if _, ok := in.ResponseCacheControl["no-store"]; ok {
		return false
	}
	if in.Shared {
		if _, ok := in.ResponseCacheControl["private"]; ok {
			return false
		}
	}
	if in.Shared && in.HasAuthorization {
		_, mustRevalidate := in.ResponseCacheControl["must-revalidate"]
		_, public := in.ResponseCacheControl["public"]
		_, validSMaxAge := validDeltaSeconds(in.ResponseCacheControl, "s-maxage")
		if !mustRevalidate && !public && !validSMaxAge {
			return false
		}
	}

	_, hasMustUnderstand := in.ResponseCacheControl["must-understand"]
	if in.ForceMustUnderstand || hasMustUnderstand {
		if !understoodStatusCodes[in.Status] {
			return false
		}
	}

	return hasPositiveCacheabilitySignal(in)
}

func hasPositiveCacheabilitySignal(in StorabilityInputs) bool {
	if _, ok := in.ResponseCacheControl["public"]; ok {
		return true
	}
	if !in.Shared {
		if _, ok := in.ResponseCacheControl["private"]; ok {
			return true
		}
	}
	if in.HasExpires {
		return true
	}
	if _, ok := validDeltaSeconds(in.ResponseCacheControl, "max-age"); ok {
		return true
	}
	if in.Shared {
		if _, ok := validDeltaSeconds(in.ResponseCacheControl, "s-maxage"); ok {
			return true
		}
	}
	return heuristicallyCacheable[in.Status]
}

func validDeltaSeconds(d Directives, name string) (int64, bool) {
	v, ok := d[name]
	if !ok {
		return 0, false
	}
	return ParsePositiveInt(v)
}

func varyContainsStar(vary string) bool {
	if vary == "" {
		return false
	}
	for _, tok := range splitDirectives(vary) {
		if trimmed := trimASCIISpace(tok); trimmed == "*" {
			return true
		}
	}
	return false
}

func trimASCIISpace(s string) string {
	start := 0
	for start < len(s) && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	end := len(s)
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}
