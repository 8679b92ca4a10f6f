package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// slidePath matches ppt/slides/slideN.xml and captures N.
var slidePath = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// atTag matches <a:t>text</a:t> with any attributes.
var atTag = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)

// extractPPTX returns one page per slide, in slide number order.
func extractPPTX(content []byte) ([]string, error) {
	zr, err := openZip(content, "PPTX")
	if err != nil {
		return nil, err
	}

	type slide struct {
		n    int
		text string
	}
	var slides []slide
	for _, f := range zr.File {
		m := slidePath.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("extract PPTX: %w", err)
		}
		slides = append(slides, slide{n: n, text: joinMatches(atTag, string(data))})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	pages := make([]string, len(slides))
	for i, s := range slides {
		pages[i] = strings.TrimSpace(s.text)
	}
	return pages, nil
}
