package models

import (
	"encoding/json"
)

// Placeholder replaces any country field that is missing or malformed in an API payload.
const Placeholder = "NA"

// CountryName holds the display names of a country
type CountryName struct {
	Common   string `json:"common"`
	Official string `json:"official"`
}

// Currency describes one currency used by a country
type Currency struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Country represents one country record returned by the lookup API.
// Identity is defined by Name.Common only.
type Country struct {
	Name       CountryName         `json:"name"`
	Currencies map[string]Currency `json:"currencies"`
	Capital    []string            `json:"capital"`
	Flag       string              `json:"flag"`
	Code       string              `json:"cca2"`
}

// Equal reports whether both records describe the same country.
func (c Country) Equal(other Country) bool {
	return c.Name.Common == other.Name.Common
}

// PrimaryCapital returns the first capital city
func (c Country) PrimaryCapital() string {
	if len(c.Capital) == 0 {
		return Placeholder
	}
	return c.Capital[0]
}

// UnmarshalJSON decodes a country leniently. Every field that is absent or has an
// unexpected shape is replaced with a placeholder instead of failing the decode.
func (c *Country) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Name = decodeName(raw["name"])
	c.Currencies = decodeCurrencies(raw["currencies"])
	c.Capital = decodeCapital(raw["capital"])
	c.Flag = decodeString(raw["flag"])
	c.Code = decodeString(raw["cca2"])
	return nil
}

// UnmarshalJSON decodes a name leniently
func (n *CountryName) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.Common = decodeString(raw["common"])
	n.Official = decodeString(raw["official"])
	return nil
}

// UnmarshalJSON decodes a currency leniently
func (cur *Currency) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cur.Name = decodeString(raw["name"])
	cur.Symbol = decodeString(raw["symbol"])
	return nil
}

func placeholderName() CountryName {
	return CountryName{Common: Placeholder, Official: Placeholder}
}

func placeholderCurrencies() map[string]Currency {
	return map[string]Currency{Placeholder: {Name: Placeholder, Symbol: Placeholder}}
}

func decodeString(data json.RawMessage) string {
	var s string
	if len(data) == 0 || string(data) == "null" || json.Unmarshal(data, &s) != nil {
		return Placeholder
	}
	return s
}

func decodeName(data json.RawMessage) CountryName {
	var n CountryName
	if len(data) == 0 || string(data) == "null" || json.Unmarshal(data, &n) != nil {
		return placeholderName()
	}
	return n
}

func decodeCurrencies(data json.RawMessage) map[string]Currency {
	var raw map[string]json.RawMessage
	if len(data) == 0 || string(data) == "null" || json.Unmarshal(data, &raw) != nil {
		return placeholderCurrencies()
	}

	currencies := make(map[string]Currency, len(raw))
	for code, entry := range raw {
		var cur Currency
		if string(entry) == "null" || json.Unmarshal(entry, &cur) != nil {
			cur = Currency{Name: Placeholder, Symbol: Placeholder}
		}
		currencies[code] = cur
	}
	return currencies
}

func decodeCapital(data json.RawMessage) []string {
	var capital []string
	if len(data) == 0 || string(data) == "null" || json.Unmarshal(data, &capital) != nil {
		return []string{Placeholder}
	}
	return capital
}
