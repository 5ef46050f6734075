// internal/desktop/keys.go
package desktop

import "strings"

// keyAliases maps the spellings models use onto canonical key names.
// "meta" is resolved per platform in NormalizeKeys.
var keyAliases = map[string]string{
	"return":     "enter",
	"control":    "ctrl",
	"option":     "alt",
	"escape":     "esc",
	"del":        "delete",
	"win":        "super",
	"windows":    "super",
	"command":    "cmd",
	"page_down":  "pagedown",
	"page_up":    "pageup",
	"pgdn":       "pagedown",
	"pgup":       "pageup",
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
}

// NormalizeKeys turns a space separated combination such as "ctrl c" or
// "Page Down" into canonical key names. The two-word forms "page down" and
// "page up" collapse into one key.
func NormalizeKeys(combo, goos string) []string {
	fields := strings.Fields(strings.ToLower(combo))
	keys := make([]string, 0, len(fields))
	for i := 0; i < len(fields); i++ {
		k := fields[i]
		if k == "page" && i+1 < len(fields) && (fields[i+1] == "down" || fields[i+1] == "up") {
			keys = append(keys, "page"+fields[i+1])
			i++
			continue
		}
		if k == "meta" {
			keys = append(keys, metaKey(goos))
			continue
		}
		if alias, ok := keyAliases[k]; ok {
			k = alias
		}
		if k == "cmd" && goos != "darwin" {
			k = "super"
		}
		keys = append(keys, k)
	}
	return keys
}

func metaKey(goos string) string {
	if goos == "darwin" {
		return "cmd"
	}
	return "super"
}
