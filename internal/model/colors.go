package model

// teamColors mirrors the palette used on the original dashboard.
var teamColors = map[string]string{
	"Iowa":           "#000000",
	"Michigan":       "#FFCB05",
	"Michigan State": "#18453B",
	"Ohio State":     "#DE3121",
	"Penn State":     "#00265D",
	"Wisconsin":      "#A00001",
}

// fallback colours for teams outside the palette; slot 0 is team one.
var fallbackColors = [2]string{"#4682B4", "#FFA500"}

// TeamColor returns the hex colour for team, or a neutral colour for the
// given selector slot (0 or 1) when the team has none.
func TeamColor(team string, slot int) string {
	if c, ok := teamColors[team]; ok {
		return c
	}
	return fallbackColors[slot&1]
}
