package export

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const reservedChars = `<>:"/\|?*`

// Filename builds a download name from a localized base. Accents are folded
// to ASCII and characters rejected by common filesystems are dropped.
func Filename(base, ext string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), base)
	if err != nil {
		folded = base
	}

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r > unicode.MaxASCII, unicode.IsControl(r), strings.ContainsRune(reservedChars, r):
			continue
		default:
			b.WriteRune(r)
		}
	}
	name := strings.ReplaceAll(strings.TrimSpace(strings.TrimRight(b.String(), ". ")), " ", "_")
	if name == "" {
		name = "export"
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}
