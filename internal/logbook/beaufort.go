package logbook

import (
	"strconv"
	"strings"
)

// Beaufort describes one force of the Beaufort scale.
type Beaufort struct {
	Force int
	Wind  string
	Wave  string
}

// BeaufortScale is the 0-12 wind force table used to default the sea state.
var BeaufortScale = []Beaufort{
	{0, "<1 kt", "0 m"},
	{1, "1–3 kt", "0–0.1 m"},
	{2, "4–6 kt", "0.1–0.5 m"},
	{3, "7–10 kt", "0.5–1.25 m"},
	{4, "11–16 kt", "1–2 m"},
	{5, "17–21 kt", "2–3 m"},
	{6, "22–27 kt", "3–4 m"},
	{7, "28–33 kt", "4–5.5 m"},
	{8, "34–40 kt", "5.5–7.5 m"},
	{9, "41–47 kt", "7–10 m"},
	{10, "48–55 kt", "9–12.5 m"},
	{11, "56–63 kt", "11.5–16 m"},
	{12, "64+ kt", ">14 m"},
}

// SeaForForce returns the wave height band for a wind force selection.
// A blank selection counts as force 0; anything else unknown yields "".
func SeaForForce(windForce string) string {
	f := strings.TrimSpace(windForce)
	if f == "" {
		f = "0"
	}
	n, err := strconv.ParseFloat(f, 64)
	if err != nil {
		return ""
	}
	for _, b := range BeaufortScale {
		if float64(b.Force) == n {
			return b.Wave
		}
	}
	return ""
}
