package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const odtContentXMLPath = "content.xml"

var (
	odtBreak = regexp.MustCompile(`<text:(tab|s|line-break)\b[^>]*/?>|</text:(p|h)>`)
	xmlTag   = regexp.MustCompile(`<[^>]*>`)
)

var odtEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&apos;", "'",
	"&quot;", `"`,
)

// extractODT extracts text from OpenDocument .odt bytes. The document body
// lives in content.xml; paragraph boundaries and tab/space elements become
// plain spaces before markup is stripped.
func extractODT(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract ODT: not a zip: %w", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != odtContentXMLPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("extract ODT: open %s: %w", f.Name, err)
		}
		docXML, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("extract ODT: read %s: %w", f.Name, err)
		}
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("extract ODT: %s not found", odtContentXMLPath)
	}

	text := odtBreak.ReplaceAllString(string(docXML), " ")
	text = xmlTag.ReplaceAllString(text, "")
	text = odtEntities.Replace(text)
	return strings.Join(strings.Fields(text), " "), nil
}
