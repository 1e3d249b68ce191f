package serviceareas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMergesAndDeduplicates(t *testing.T) {
	resolved := Resolve([]string{"  Boggomsbaai ", "dana bay", "", "Boggomsbaai"})

	assert.Contains(t, resolved, "Boggomsbaai")
	assert.NotContains(t, resolved, "dana bay", "default casing wins for duplicates")
	assert.Contains(t, resolved, "Dana Bay")

	// One entry per area, defaults first.
	require.Len(t, resolved, len(DefaultAreas)+1)
	assert.Equal(t, DefaultAreas[0], resolved[0])
}

func TestContains(t *testing.T) {
	areas := Resolve(nil)

	assert.True(t, Contains(areas, "Dana Bay"))
	assert.True(t, Contains(areas, "dana bay"))
	assert.True(t, Contains(areas, "  Hartenbos "))
	assert.False(t, Contains(areas, "Knysna"))
	assert.False(t, Contains(areas, ""))
}

func TestComposeAddress(t *testing.T) {
	assert.Equal(t,
		"12 Protea Street, Dana Bay, Western Cape",
		ComposeAddress(" 12 Protea Street ", "Dana Bay"),
	)
}

func TestParseAddressRoundTrip(t *testing.T) {
	street, area := ParseAddress(ComposeAddress("7 Aalwyn Close", "Hartenbos"), nil)
	assert.Equal(t, "7 Aalwyn Close", street)
	assert.Equal(t, "Hartenbos", area)
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		allowed []string
		street  string
		area    string
	}{
		{"known area without province", "5 Milkwood Drive, Glentana", nil, "5 Milkwood Drive", "Glentana"},
		{"custom allowed area", "8 Ou Pad, Boggomsbaai, Western Cape", []string{"Boggomsbaai"}, "8 Ou Pad", "Boggomsbaai"},
		{"unknown area falls back to street", "9 Kerk Straat, Knysna, Western Cape", nil, "9 Kerk Straat, Knysna, Western Cape", ""},
		{"street with internal comma", "Unit 2, 4 Vygie Lane, Reebok", nil, "Unit 2, 4 Vygie Lane", "Reebok"},
		{"single part", "just a street", nil, "just a street", ""},
		{"empty", "  ", nil, "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			street, area := ParseAddress(tc.value, tc.allowed)
			assert.Equal(t, tc.street, street)
			assert.Equal(t, tc.area, area)
		})
	}
}
