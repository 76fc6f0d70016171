package countries

import (
	"sort"

	"github.com/joefazee/countrylookup/internal/formatter"
	"github.com/joefazee/countrylookup/models"
)

// CurrencyResponse represents one currency of a country
type CurrencyResponse struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// CountryResponse represents the response for country data
type CountryResponse struct {
	Name         string             `json:"name"`
	OfficialName string             `json:"official_name"`
	Code         string             `json:"code"`
	Flag         string             `json:"flag"`
	Capital      string             `json:"capital"`
	Capitals     []string           `json:"capitals"`
	Currencies   []CurrencyResponse `json:"currencies"`
	CallingCode  string             `json:"calling_code,omitempty"`
}

// ToCountryResponse converts a models.Country to CountryResponse
func ToCountryResponse(country models.Country) CountryResponse {
	return CountryResponse{
		Name:         country.Name.Common,
		OfficialName: country.Name.Official,
		Code:         country.Code,
		Flag:         country.Flag,
		Capital:      country.PrimaryCapital(),
		Capitals:     country.Capital,
		Currencies:   sortedCurrencies(country),
		CallingCode:  callingCode(country),
	}
}

// ToCountryResponseList converts a slice of models.Country to CountryResponse
func ToCountryResponseList(countries []models.Country) []CountryResponse {
	responses := make([]CountryResponse, len(countries))
	for i := range countries {
		responses[i] = ToCountryResponse(countries[i])
	}
	return responses
}

// sortedCurrencies orders currencies by code so output is stable.
func sortedCurrencies(country models.Country) []CurrencyResponse {
	codes := make([]string, 0, len(country.Currencies))
	for code := range country.Currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]CurrencyResponse, 0, len(codes))
	for _, code := range codes {
		cur := country.Currencies[code]
		out = append(out, CurrencyResponse{Code: code, Name: cur.Name, Symbol: cur.Symbol})
	}
	return out
}

// callingCode skips the placeholder, which would otherwise resolve to Namibia.
func callingCode(country models.Country) string {
	if country.Code == models.Placeholder {
		return ""
	}
	return formatter.CallingCode(country.Code)
}
