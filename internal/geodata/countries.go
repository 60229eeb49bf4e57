// Package geodata holds the country reference dataset: ISO-3166 codes,
// display names, regions and centroids, plus the lookup indexes the
// geo-resolution strategies and cache TTL policy consume.
package geodata

import "strings"

// Country contains reference metadata for a single country.
type Country struct {
	Alpha2 string
	Name   string
	Region string
	Lat    float64
	Lng    float64
}

// UnknownCode is the sentinel country code for unresolved sources.
const UnknownCode = "UNK"

// countries is keyed by ISO-3166 alpha-3 code.
// Centroids are approximate country midpoints, good enough for map display.
var countries = map[string]Country{
	"ARE": {Alpha2: "AE", Name: "United Arab Emirates", Region: "Middle East", Lat: 23.42, Lng: 53.85},
	"ARG": {Alpha2: "AR", Name: "Argentina", Region: "South America", Lat: -38.42, Lng: -63.62},
	"AUS": {Alpha2: "AU", Name: "Australia", Region: "Oceania", Lat: -25.27, Lng: 133.78},
	"AUT": {Alpha2: "AT", Name: "Austria", Region: "Europe", Lat: 47.52, Lng: 14.55},
	"BEL": {Alpha2: "BE", Name: "Belgium", Region: "Europe", Lat: 50.50, Lng: 4.47},
	"BGD": {Alpha2: "BD", Name: "Bangladesh", Region: "Asia", Lat: 23.68, Lng: 90.36},
	"BGR": {Alpha2: "BG", Name: "Bulgaria", Region: "Europe", Lat: 42.73, Lng: 25.49},
	"BRA": {Alpha2: "BR", Name: "Brazil", Region: "South America", Lat: -14.24, Lng: -51.93},
	"CAN": {Alpha2: "CA", Name: "Canada", Region: "North America", Lat: 56.13, Lng: -106.35},
	"CHE": {Alpha2: "CH", Name: "Switzerland", Region: "Europe", Lat: 46.82, Lng: 8.23},
	"CHL": {Alpha2: "CL", Name: "Chile", Region: "South America", Lat: -35.68, Lng: -71.54},
	"CHN": {Alpha2: "CN", Name: "China", Region: "Asia", Lat: 35.86, Lng: 104.20},
	"COL": {Alpha2: "CO", Name: "Colombia", Region: "South America", Lat: 4.57, Lng: -74.30},
	"CZE": {Alpha2: "CZ", Name: "Czechia", Region: "Europe", Lat: 49.82, Lng: 15.47},
	"DEU": {Alpha2: "DE", Name: "Germany", Region: "Europe", Lat: 51.17, Lng: 10.45},
	"DNK": {Alpha2: "DK", Name: "Denmark", Region: "Europe", Lat: 56.26, Lng: 9.50},
	"EGY": {Alpha2: "EG", Name: "Egypt", Region: "Africa", Lat: 26.82, Lng: 30.80},
	"ESP": {Alpha2: "ES", Name: "Spain", Region: "Europe", Lat: 40.46, Lng: -3.75},
	"EST": {Alpha2: "EE", Name: "Estonia", Region: "Europe", Lat: 58.60, Lng: 25.01},
	"ETH": {Alpha2: "ET", Name: "Ethiopia", Region: "Africa", Lat: 9.15, Lng: 40.49},
	"FIN": {Alpha2: "FI", Name: "Finland", Region: "Europe", Lat: 61.92, Lng: 25.75},
	"FRA": {Alpha2: "FR", Name: "France", Region: "Europe", Lat: 46.23, Lng: 2.21},
	"GBR": {Alpha2: "GB", Name: "United Kingdom", Region: "Europe", Lat: 55.38, Lng: -3.44},
	"GHA": {Alpha2: "GH", Name: "Ghana", Region: "Africa", Lat: 7.95, Lng: -1.02},
	"GRC": {Alpha2: "GR", Name: "Greece", Region: "Europe", Lat: 39.07, Lng: 21.82},
	"HKG": {Alpha2: "HK", Name: "Hong Kong", Region: "Asia", Lat: 22.40, Lng: 114.11},
	"HRV": {Alpha2: "HR", Name: "Croatia", Region: "Europe", Lat: 45.10, Lng: 15.20},
	"HUN": {Alpha2: "HU", Name: "Hungary", Region: "Europe", Lat: 47.16, Lng: 19.50},
	"IDN": {Alpha2: "ID", Name: "Indonesia", Region: "Asia", Lat: -0.79, Lng: 113.92},
	"IND": {Alpha2: "IN", Name: "India", Region: "Asia", Lat: 20.59, Lng: 78.96},
	"IRL": {Alpha2: "IE", Name: "Ireland", Region: "Europe", Lat: 53.41, Lng: -8.24},
	"IRN": {Alpha2: "IR", Name: "Iran", Region: "Middle East", Lat: 32.43, Lng: 53.69},
	"IRQ": {Alpha2: "IQ", Name: "Iraq", Region: "Middle East", Lat: 33.22, Lng: 43.68},
	"ISL": {Alpha2: "IS", Name: "Iceland", Region: "Europe", Lat: 64.96, Lng: -19.02},
	"ISR": {Alpha2: "IL", Name: "Israel", Region: "Middle East", Lat: 31.05, Lng: 34.85},
	"ITA": {Alpha2: "IT", Name: "Italy", Region: "Europe", Lat: 41.87, Lng: 12.57},
	"JPN": {Alpha2: "JP", Name: "Japan", Region: "Asia", Lat: 36.20, Lng: 138.25},
	"KEN": {Alpha2: "KE", Name: "Kenya", Region: "Africa", Lat: -0.02, Lng: 37.91},
	"KOR": {Alpha2: "KR", Name: "South Korea", Region: "Asia", Lat: 35.91, Lng: 127.77},
	"LTU": {Alpha2: "LT", Name: "Lithuania", Region: "Europe", Lat: 55.17, Lng: 23.88},
	"LVA": {Alpha2: "LV", Name: "Latvia", Region: "Europe", Lat: 56.88, Lng: 24.60},
	"MAR": {Alpha2: "MA", Name: "Morocco", Region: "Africa", Lat: 31.79, Lng: -7.09},
	"MEX": {Alpha2: "MX", Name: "Mexico", Region: "North America", Lat: 23.63, Lng: -102.55},
	"MYS": {Alpha2: "MY", Name: "Malaysia", Region: "Asia", Lat: 4.21, Lng: 101.98},
	"NGA": {Alpha2: "NG", Name: "Nigeria", Region: "Africa", Lat: 9.08, Lng: 8.68},
	"NLD": {Alpha2: "NL", Name: "Netherlands", Region: "Europe", Lat: 52.13, Lng: 5.29},
	"NOR": {Alpha2: "NO", Name: "Norway", Region: "Europe", Lat: 60.47, Lng: 8.47},
	"NZL": {Alpha2: "NZ", Name: "New Zealand", Region: "Oceania", Lat: -40.90, Lng: 174.89},
	"PAK": {Alpha2: "PK", Name: "Pakistan", Region: "Asia", Lat: 30.38, Lng: 69.35},
	"PER": {Alpha2: "PE", Name: "Peru", Region: "South America", Lat: -9.19, Lng: -75.02},
	"PHL": {Alpha2: "PH", Name: "Philippines", Region: "Asia", Lat: 12.88, Lng: 121.77},
	"POL": {Alpha2: "PL", Name: "Poland", Region: "Europe", Lat: 51.92, Lng: 19.15},
	"PRT": {Alpha2: "PT", Name: "Portugal", Region: "Europe", Lat: 39.40, Lng: -8.22},
	"QAT": {Alpha2: "QA", Name: "Qatar", Region: "Middle East", Lat: 25.35, Lng: 51.18},
	"ROU": {Alpha2: "RO", Name: "Romania", Region: "Europe", Lat: 45.94, Lng: 24.97},
	"RUS": {Alpha2: "RU", Name: "Russia", Region: "Europe", Lat: 61.52, Lng: 105.32},
	"SAU": {Alpha2: "SA", Name: "Saudi Arabia", Region: "Middle East", Lat: 23.89, Lng: 45.08},
	"SGP": {Alpha2: "SG", Name: "Singapore", Region: "Asia", Lat: 1.35, Lng: 103.82},
	"SRB": {Alpha2: "RS", Name: "Serbia", Region: "Europe", Lat: 44.02, Lng: 21.01},
	"SVK": {Alpha2: "SK", Name: "Slovakia", Region: "Europe", Lat: 48.67, Lng: 19.70},
	"SVN": {Alpha2: "SI", Name: "Slovenia", Region: "Europe", Lat: 46.15, Lng: 14.99},
	"SWE": {Alpha2: "SE", Name: "Sweden", Region: "Europe", Lat: 60.13, Lng: 18.64},
	"THA": {Alpha2: "TH", Name: "Thailand", Region: "Asia", Lat: 15.87, Lng: 100.99},
	"TUR": {Alpha2: "TR", Name: "Turkey", Region: "Middle East", Lat: 38.96, Lng: 35.24},
	"TWN": {Alpha2: "TW", Name: "Taiwan", Region: "Asia", Lat: 23.70, Lng: 120.96},
	"TZA": {Alpha2: "TZ", Name: "Tanzania", Region: "Africa", Lat: -6.37, Lng: 34.89},
	"UKR": {Alpha2: "UA", Name: "Ukraine", Region: "Europe", Lat: 48.38, Lng: 31.17},
	"USA": {Alpha2: "US", Name: "United States", Region: "North America", Lat: 37.09, Lng: -95.71},
	"VEN": {Alpha2: "VE", Name: "Venezuela", Region: "South America", Lat: 6.42, Lng: -66.59},
	"VNM": {Alpha2: "VN", Name: "Vietnam", Region: "Asia", Lat: 14.06, Lng: 108.28},
	"ZAF": {Alpha2: "ZA", Name: "South Africa", Region: "Africa", Lat: -30.56, Lng: 22.94},
	"ZWE": {Alpha2: "ZW", Name: "Zimbabwe", Region: "Africa", Lat: -19.02, Lng: 29.15},
}

// aliases maps common informal country references (short names, demonyms,
// major aliases) to alpha-3 codes. Used by the free-text strategy when the
// canonical name index misses.
var aliases = map[string]string{
	"america":        "USA",
	"american":       "USA",
	"u.s.":           "USA",
	"u.s.a.":         "USA",
	"us":             "USA",
	"usa":            "USA",
	"uk":             "GBR",
	"u.k.":           "GBR",
	"britain":        "GBR",
	"great britain":  "GBR",
	"british":        "GBR",
	"england":        "GBR",
	"scotland":       "GBR",
	"wales":          "GBR",
	"canadian":       "CAN",
	"german":         "DEU",
	"french":         "FRA",
	"italian":        "ITA",
	"spanish":        "ESP",
	"dutch":          "NLD",
	"holland":        "NLD",
	"australian":     "AUS",
	"indian":         "IND",
	"chinese":        "CHN",
	"japanese":       "JPN",
	"korea":          "KOR",
	"korean":         "KOR",
	"russian":        "RUS",
	"brazilian":      "BRA",
	"mexican":        "MEX",
	"irish":          "IRL",
	"swiss":          "CHE",
	"swedish":        "SWE",
	"norwegian":      "NOR",
	"danish":         "DNK",
	"polish":         "POL",
	"turkish":        "TUR",
	"israeli":        "ISR",
	"egyptian":       "EGY",
	"nigerian":       "NGA",
	"kenyan":         "KEN",
	"south african":  "ZAF",
	"emirates":       "ARE",
	"uae":            "ARE",
	"czech republic": "CZE",
}

var (
	alpha2Index map[string]string // alpha2 -> alpha3
	nameIndex   map[string]string // lowercase canonical name -> alpha3
)

func init() {
	alpha2Index = make(map[string]string, len(countries))
	nameIndex = make(map[string]string, len(countries))
	for code, c := range countries {
		alpha2Index[c.Alpha2] = code
		nameIndex[strings.ToLower(c.Name)] = code
	}
}

// Lookup returns the reference entry for an alpha-3 code.
func Lookup(alpha3 string) (Country, bool) {
	c, ok := countries[strings.ToUpper(alpha3)]
	return c, ok
}

// IsValidCode reports whether alpha3 is a known country code.
func IsValidCode(alpha3 string) bool {
	_, ok := countries[strings.ToUpper(alpha3)]
	return ok
}

// FromAlpha2 converts an ISO alpha-2 code to alpha-3.
func FromAlpha2(alpha2 string) (string, bool) {
	code, ok := alpha2Index[strings.ToUpper(alpha2)]
	return code, ok
}

// CodeForName resolves a country display name to an alpha-3 code, checking
// the canonical name index first and the alias table as a fallback.
func CodeForName(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if code, ok := nameIndex[key]; ok {
		return code, true
	}
	code, ok := aliases[key]
	return code, ok
}

// Names returns the lowercase canonical-name index. Callers must not mutate it.
func Names() map[string]string {
	return nameIndex
}

// Aliases returns the alias index. Callers must not mutate it.
func Aliases() map[string]string {
	return aliases
}
