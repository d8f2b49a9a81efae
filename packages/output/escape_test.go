package output

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "hello", expected: "hello"},
		{name: "less than", input: "x<y", expected: "x&lt;y"},
		{name: "all specials", input: `a&b<c>d"e'f`, expected: "a&amp;b&lt;c&gt;d&quot;e&apos;f"},
		{name: "newline kept", input: "line1\nline2", expected: "line1\nline2"},
		{name: "carriage return", input: "a\r\nb", expected: "a&#xD;\nb"},
		{name: "control character", input: "a\x00b", expected: "a\uFFFDb"},
		{name: "invalid utf8", input: "a\xffb", expected: "a\uFFFDb"},
		{name: "unicode", input: "✓ ünïcödé", expected: "✓ ünïcödé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EscapeText(tt.input))
		})
	}
}

func TestEscapeAttr(t *testing.T) {
	assert.Equal(t, "a&amp;b&lt;c&gt;d&quot;e", EscapeAttr(`a&b<c>d"e`))
	assert.Equal(t, "a&#xA;b&#x9;c", EscapeAttr("a\nb\tc"))
}

func TestEscape_RoundTrip(t *testing.T) {
	inputs := []string{
		`x<y`,
		`a & b`,
		`"quoted" <tag attr="v">`,
		"multi\nline\ttabbed",
		`]]> cdata end`,
	}

	for _, in := range inputs {
		doc := `<root attr="` + EscapeAttr(in) + `">` + EscapeText(in) + `</root>`

		var parsed struct {
			Attr string `xml:"attr,attr"`
			Text string `xml:",chardata"`
		}
		require.NoError(t, xml.NewDecoder(strings.NewReader(doc)).Decode(&parsed), doc)
		assert.Equal(t, in, parsed.Attr)
		assert.Equal(t, in, parsed.Text)
	}
}
