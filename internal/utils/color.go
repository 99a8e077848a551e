package utils

import (
	"strconv"
	"strings"
)

// ParseHexColor parses "#RRGGBB" (or "RRGGBB") into RGB components.
// Invalid input falls back to the default report blue.
func ParseHexColor(s string) (r, g, b int) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, 102, 204
	}
	rv, err1 := strconv.ParseInt(s[0:2], 16, 0)
	gv, err2 := strconv.ParseInt(s[2:4], 16, 0)
	bv, err3 := strconv.ParseInt(s[4:6], 16, 0)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 102, 204
	}
	return int(rv), int(gv), int(bv)
}
