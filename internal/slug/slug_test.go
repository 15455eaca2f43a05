package slug

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Seismic Survey 2024", "seismic-survey-2024"},
		{"Geothermal Wells — Groß Schönebeck", "geothermal-wells-gross-schoenebeck"},
		{"  leading / trailing  ", "leading-trailing"},
		{"Crème brûlée données", "creme-brulee-donnees"},
		{"UPPER_case.file", "upper-case-file"},
		{"---", ""},
		{"", ""},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Make(c.in), "input %q", c.in)
	}
}

func TestMake_Idempotent(t *testing.T) {
	s := Make("Borehole Logs (Küste), 2023")
	require.Equal(t, s, Make(s))
}
