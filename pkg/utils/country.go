package utils

import (
	"sort"
	"strings"
)

// CountryInfo represents country information
type CountryInfo struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// CountryCount is a country with the number of proposals located there.
type CountryCount struct {
	CountryInfo
	Count int `json:"count"`
}

// Country names for the codes the daemon commonly reports
var countryNames = map[string]string{
	"AE": "UAE",
	"AR": "Argentina",
	"AT": "Austria",
	"AU": "Australia",
	"BE": "Belgium",
	"BG": "Bulgaria",
	"BR": "Brazil",
	"CA": "Canada",
	"CH": "Switzerland",
	"CL": "Chile",
	"CZ": "Czechia",
	"DE": "Germany",
	"DK": "Denmark",
	"ES": "Spain",
	"FI": "Finland",
	"FR": "France",
	"GB": "United Kingdom",
	"GR": "Greece",
	"HK": "Hong Kong",
	"HU": "Hungary",
	"ID": "Indonesia",
	"IE": "Ireland",
	"IL": "Israel",
	"IN": "India",
	"IT": "Italy",
	"JP": "Japan",
	"KR": "South Korea",
	"LT": "Lithuania",
	"LV": "Latvia",
	"MX": "Mexico",
	"MY": "Malaysia",
	"NG": "Nigeria",
	"NL": "Netherlands",
	"NO": "Norway",
	"NZ": "New Zealand",
	"PH": "Philippines",
	"PL": "Poland",
	"PT": "Portugal",
	"RO": "Romania",
	"RS": "Serbia",
	"RU": "Russia",
	"SE": "Sweden",
	"SG": "Singapore",
	"TH": "Thailand",
	"TR": "Turkey",
	"TW": "Taiwan",
	"UA": "Ukraine",
	"US": "United States",
	"VN": "Vietnam",
	"ZA": "South Africa",
}

// LookupCountry returns display info for an ISO 3166-1 alpha-2 code.
// Unknown codes use the code as name.
func LookupCountry(code string) CountryInfo {
	code = strings.ToUpper(strings.TrimSpace(code))
	name, ok := countryNames[code]
	if !ok {
		name = code
	}
	return CountryInfo{Code: code, Name: name, Emoji: FlagEmoji(code)}
}

// FlagEmoji builds the regional-indicator flag for a two-letter code.
func FlagEmoji(code string) string {
	if len(code) != 2 {
		return ""
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(code) {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}

// CountryBadges turns per-country counts into a list ordered by count,
// then code.
func CountryBadges(counts map[string]int) []CountryCount {
	badges := make([]CountryCount, 0, len(counts))
	for code, n := range counts {
		badges = append(badges, CountryCount{CountryInfo: LookupCountry(code), Count: n})
	}
	sort.Slice(badges, func(i, j int) bool {
		if badges[i].Count != badges[j].Count {
			return badges[i].Count > badges[j].Count
		}
		return badges[i].Code < badges[j].Code
	})
	return badges
}
