package models

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const egyptJSON = `{
	"name": {"common": "Egypt", "official": "Arab Republic of Egypt"},
	"currencies": {"EGP": {"name": "Egyptian pound", "symbol": "£"}},
	"capital": ["Cairo"],
	"flag": "🇪🇬",
	"cca2": "EG"
}`

func TestCountry_UnmarshalJSON(t *testing.T) {
	t.Run("Full record", func(t *testing.T) {
		var c Country
		require.NoError(t, json.Unmarshal([]byte(egyptJSON), &c))

		assert.Equal(t, "Egypt", c.Name.Common)
		assert.Equal(t, "Arab Republic of Egypt", c.Name.Official)
		assert.Equal(t, Currency{Name: "Egyptian pound", Symbol: "£"}, c.Currencies["EGP"])
		assert.Equal(t, []string{"Cairo"}, c.Capital)
		assert.Equal(t, "🇪🇬", c.Flag)
		assert.Equal(t, "EG", c.Code)
	})

	t.Run("Missing capital", func(t *testing.T) {
		var c Country
		err := json.Unmarshal([]byte(`{"name": {"common": "Antarctica", "official": "Antarctica"}}`), &c)

		require.NoError(t, err)
		assert.Equal(t, []string{Placeholder}, c.Capital)
		assert.Equal(t, Placeholder, c.PrimaryCapital())
	})

	t.Run("Empty object", func(t *testing.T) {
		var c Country
		require.NoError(t, json.Unmarshal([]byte(`{}`), &c))

		assert.Equal(t, CountryName{Common: Placeholder, Official: Placeholder}, c.Name)
		assert.Equal(t, map[string]Currency{Placeholder: {Name: Placeholder, Symbol: Placeholder}}, c.Currencies)
		assert.Equal(t, []string{Placeholder}, c.Capital)
		assert.Equal(t, Placeholder, c.Flag)
		assert.Equal(t, Placeholder, c.Code)
	})

	tests := []struct {
		name   string
		json   string
		verify func(t *testing.T, c Country)
	}{
		{
			name: "name is a string",
			json: `{"name": "Egypt"}`,
			verify: func(t *testing.T, c Country) {
				assert.Equal(t, Placeholder, c.Name.Common)
			},
		},
		{
			name: "common name missing",
			json: `{"name": {"official": "Republic of Chad"}}`,
			verify: func(t *testing.T, c Country) {
				assert.Equal(t, Placeholder, c.Name.Common)
				assert.Equal(t, "Republic of Chad", c.Name.Official)
			},
		},
		{
			name: "capital is a number",
			json: `{"capital": 42}`,
			verify: func(t *testing.T, c Country) {
				assert.Equal(t, []string{Placeholder}, c.Capital)
			},
		},
		{
			name: "capital is null",
			json: `{"capital": null}`,
			verify: func(t *testing.T, c Country) {
				assert.Equal(t, []string{Placeholder}, c.Capital)
			},
		},
		{
			name: "currency without symbol",
			json: `{"currencies": {"USD": {"name": "United States dollar"}}}`,
			verify: func(t *testing.T, c Country) {
				assert.Equal(t, Currency{Name: "United States dollar", Symbol: Placeholder}, c.Currencies["USD"])
			},
		},
		{
			name: "currency entry malformed",
			json: `{"currencies": {"USD": "dollar"}}`,
			verify: func(t *testing.T, c Country) {
				assert.Equal(t, Currency{Name: Placeholder, Symbol: Placeholder}, c.Currencies["USD"])
			},
		},
		{
			name: "currencies is a list",
			json: `{"currencies": ["USD"]}`,
			verify: func(t *testing.T, c Country) {
				assert.Contains(t, c.Currencies, Placeholder)
			},
		},
		{
			name: "flag is null",
			json: `{"flag": null}`,
			verify: func(t *testing.T, c Country) {
				assert.Equal(t, Placeholder, c.Flag)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Country
			require.NoError(t, json.Unmarshal([]byte(tt.json), &c))
			tt.verify(t, c)
		})
	}

	t.Run("Not an object", func(t *testing.T) {
		var c Country
		assert.Error(t, json.Unmarshal([]byte(`"Egypt"`), &c))
	})
}

func TestCountry_UnmarshalList(t *testing.T) {
	var countries []Country
	payload := fmt.Sprintf(`[%s, {"name": {"common": "Sudan"}}]`, egyptJSON)

	require.NoError(t, json.Unmarshal([]byte(payload), &countries))
	require.Len(t, countries, 2)
	assert.Equal(t, "Egypt", countries[0].Name.Common)
	assert.Equal(t, "Sudan", countries[1].Name.Common)
	assert.Equal(t, []string{Placeholder}, countries[1].Capital)
}

func TestCountry_Equal(t *testing.T) {
	a := Country{Name: CountryName{Common: "Egypt", Official: "Arab Republic of Egypt"}, Capital: []string{"Cairo"}}
	b := Country{Name: CountryName{Common: "Egypt", Official: "Egypt"}, Capital: []string{"Alexandria"}}
	c := Country{Name: CountryName{Common: "egypt"}}

	assert.True(t, a.Equal(b), "records with the same common name are the same country")
	assert.False(t, a.Equal(c), "common name comparison is case-sensitive")
}

func TestStatusCodeOf(t *testing.T) {
	code, ok := StatusCodeOf(fmt.Errorf("lookup: %w", NewStatusError(404)))
	assert.True(t, ok)
	assert.Equal(t, 404, code)

	_, ok = StatusCodeOf(ErrRequestFailed)
	assert.False(t, ok)
}
