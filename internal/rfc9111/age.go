package rfc9111

import "time"

// AgeInputs carries the values the corrected-initial-age computation needs,
// per RFC 9111 §4.2.3 and spec §4.6.
type AgeInputs struct {
	AgeHeader   string // raw "Age" field value, delta-seconds
	DateHeader  string // raw "Date" field value, HTTP-date
	RequestTime time.Time
	ResponseTime time.Time
	Now         time.Time
}

// CorrectedInitialAge implements the RFC 9111 §4.2.3 algorithm:
//
//	age_value = positive_int(Age) * 1000ms (or 0 if absent/invalid)
//	date_value = Date, normalized into (request_time, now]; else request_time
//	apparent_age = max(0, response_time - date_value)
//	response_delay = response_time - request_time
//	corrected_age = age_value + response_delay
//	corrected_initial_age = max(apparent_age, corrected_age)
func CorrectedInitialAge(in AgeInputs) time.Duration {
	ageValue := time.Duration(0)
	if seconds, ok := ParsePositiveInt(in.AgeHeader); ok {
		ageValue = time.Duration(seconds) * time.Second
	}

	dateValue := in.RequestTime
	if parsed, err := time.Parse(time.RFC1123, in.DateHeader); err == nil {
		if parsed.After(in.RequestTime) && !parsed.After(in.Now) {
			dateValue = parsed
		}
	}

	apparentAge := in.ResponseTime.Sub(dateValue)
	if apparentAge < 0 {
		apparentAge = 0
	}

	responseDelay := in.ResponseTime.Sub(in.RequestTime)
	if responseDelay < 0 {
		responseDelay = 0
	}

	correctedAge := ageValue + responseDelay

	if apparentAge > correctedAge {
		return apparentAge
	}
	return correctedAge
}

// CurrentAge computes RFC 9111 current_age: corrected_initial_age plus the
// resident time since the response was received.
func CurrentAge(correctedInitialAge time.Duration, responseTime, now time.Time) time.Duration {
	resident := now.Sub(responseTime)
	if resident < 0 {
		resident = 0
	}
	return correctedInitialAge + resident
}

// FormatAgeSeconds floors a duration to whole seconds for the Age response
// header, per spec §4.6 ("Age response header is replaced with
// floor(current_age / 1000)").
func FormatAgeSeconds(age time.Duration) int64 {
	seconds := int64(age / time.Second)
	if seconds < 0 {
		return 0
	}
	return seconds
}
