package playlist

import (
	"io"
	"regexp"
	"strings"

	"github.com/voyagen/m3ulive/internal/models"
)

// Header is the first line of every playlist written by this package.
const Header = "#EXTM3U"

// MetadataPrefix marks an entry's metadata line; the stream url follows it.
const MetadataPrefix = "#EXTINF"

var (
	reTvgID   = regexp.MustCompile(`(?:^|\s)tvg-id="([^"]*)"`)
	reTvgName = regexp.MustCompile(`(?:^|\s)tvg-name="([^"]*)"`)
	reTvgLogo = regexp.MustCompile(`(?:^|\s)tvg-logo="([^"]*)"`)
	reGroup   = regexp.MustCompile(`(?:^|\s)group-title="([^"]*)"`)
)

// IsMetadataLine reports whether line starts an entry.
func IsMetadataLine(line string) bool {
	return len(line) >= len(MetadataPrefix) && strings.EqualFold(line[:len(MetadataPrefix)], MetadataPrefix)
}

// ParseMetadataLine extracts the attributes and display name of an EXTINF line.
// The returned entry has no StreamURL; it arrives on the following line.
// The name starts after the first comma outside a quoted attribute value, so
// names containing commas are kept whole. If the quotes never balance, the
// last comma is used instead. A line without a name separator yields an
// empty Name.
func ParseMetadataLine(line string) models.Entry {
	attrs, name := splitName(line)
	return models.Entry{
		Name:     name,
		TVGID:    matchFirst(reTvgID, attrs),
		TVGName:  matchFirst(reTvgName, attrs),
		LogoURL:  matchFirst(reTvgLogo, attrs),
		Category: matchFirst(reGroup, attrs),
	}
}

// splitName cuts line at the first comma outside a quoted attribute value.
// Commas inside group-title="News, UK" belong to the attribute; commas in
// the display name belong to the name. An unbalanced quote falls back to
// the last comma.
func splitName(line string) (attrs, name string) {
	quoted := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				return line[:i], line[i+1:]
			}
		}
	}
	if i := strings.LastIndexByte(line, ','); i >= 0 {
		return line[:i], line[i+1:]
	}
	return line, ""
}

func matchFirst(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// RenderMetadataLine renders the EXTINF line of e without a trailing newline.
// Attributes are written in a fixed order and omitted when empty.
func RenderMetadataLine(e models.Entry) string {
	var b strings.Builder
	b.WriteString(MetadataPrefix)
	b.WriteString(":-1")
	writeAttr(&b, "tvg-id", e.TVGID)
	writeAttr(&b, "tvg-name", e.TVGName)
	writeAttr(&b, "tvg-logo", e.LogoURL)
	writeAttr(&b, "group-title", e.Category)
	b.WriteByte(',')
	b.WriteString(e.Name)
	return b.String()
}

func writeAttr(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteString(`="`)
	b.WriteString(value)
	b.WriteByte('"')
}

// RenderEntry renders e as its two playlist lines, each newline-terminated.
func RenderEntry(e models.Entry) string {
	return RenderMetadataLine(e) + "\n" + e.StreamURL + "\n"
}

// WriteHeader writes the playlist header line.
func WriteHeader(w io.Writer) error {
	_, err := io.WriteString(w, Header+"\n")
	return err
}

// WriteEntry writes the rendered form of e.
func WriteEntry(w io.Writer, e models.Entry) error {
	_, err := io.WriteString(w, RenderEntry(e))
	return err
}
