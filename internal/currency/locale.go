package currency

import "strings"

// territories maps a locale territory to the ISO code of its rule set.
var territories = map[string]string{
	"US": "USD", "GB": "GBP", "JP": "JPY", "RU": "RUB", "UA": "UAH",
	"MX": "MXN", "SE": "SEK", "SA": "SAR", "NO": "NOK", "TH": "THB",
	"VN": "VND", "IN": "INR", "RO": "RON", "AE": "AED", "LT": "LTL",
	"RS": "RSD", "HU": "HUF", "IL": "ILS", "EG": "EGP", "PL": "PLN",
	"CZ": "CZK", "AR": "ARS", "TW": "TWD", "GT": "GTQ", "CN": "CNY",
	"MA": "MAD", "MK": "MKD", "ID": "IDR", "CA": "CAD", "KZ": "KZT",
	"TN": "TND", "MY": "MYR", "ZA": "ZAR",

	"AT": "EUR", "BE": "EUR", "CY": "EUR", "DE": "EUR", "EE": "EUR",
	"ES": "EUR", "FI": "EUR", "FR": "EUR", "GR": "EUR", "HR": "EUR",
	"IE": "EUR", "IT": "EUR", "LU": "EUR", "LV": "EUR", "MT": "EUR",
	"NL": "EUR", "PT": "EUR", "SI": "EUR", "SK": "EUR",
}

// detect derives the localized rule set from the POSIX locale variables.
// Unknown or missing locales fall back to United States conventions.
func detect(getenv func(string) string) Rules {
	r := entry(1)
	for _, key := range []string{"LC_ALL", "LC_MONETARY", "LANG"} {
		if code, ok := territoryCode(getenv(key)); ok {
			if _, rules, err := Lookup(code); err == nil {
				r = rules
			}
			break
		}
	}
	r.Name = "Localized"
	return r
}

// territoryCode extracts the currency code for a locale such as "de_DE.UTF-8"
// or "pt_BR@euro". The C and POSIX locales carry no territory.
func territoryCode(locale string) (string, bool) {
	if locale == "" || locale == "C" || locale == "POSIX" {
		return "", false
	}
	locale, _, _ = strings.Cut(locale, ".")
	locale, _, _ = strings.Cut(locale, "@")
	_, territory, ok := strings.Cut(locale, "_")
	if !ok {
		return "", false
	}
	code, ok := territories[strings.ToUpper(territory)]
	return code, ok
}
