// Package links builds the mapping from result links on a competition page to their
// descriptive names, and selects the protocol and judge-panel documents from it.
package links

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoLinkTable is returned when a competition page has no leaf table mentioning
// the starting order
var ErrNoLinkTable = errors.New("no link table found")

// Mapping maps a result link to its descriptive name, e.g.
// "SEG001.pdf" -> "Men Short Program Judges Scores"
type Mapping map[string]string

// Link is one entry of a Mapping
type Link struct {
	Href  string `json:"href"`
	Label string `json:"label"`
}

// File returns the name the linked document is stored under: the last path segment
// of the link.
func (l Link) File() string {
	return FileName(l.Href)
}

// FileName returns the last path segment of a link
func FileName(href string) string {
	if i := strings.LastIndex(href, "/"); i >= 0 {
		return href[i+1:]
	}
	return href
}

var excludedProtocols = []string{"qualifying", "synchronized", "_qa_", "_qb_", "preliminaryround"}

// Protocols returns the PDF score protocols, leaving out qualifying rounds and
// synchronized skating.
func (m Mapping) Protocols() []Link {
	return m.filter(func(href, label string) bool {
		key := strings.ToLower(href)
		if !strings.HasSuffix(href, ".pdf") || !strings.Contains(strings.ToLower(label), "score") {
			return false
		}
		for _, ex := range excludedProtocols {
			if strings.Contains(key, ex) {
				return false
			}
		}
		return true
	})
}

// JudgePages returns the panel-of-judges and officials pages
func (m Mapping) JudgePages() []Link {
	return m.filter(func(_, label string) bool {
		l := strings.ToLower(label)
		return strings.Contains(l, "panel of judges") || strings.Contains(l, "officials")
	})
}

// Links returns every entry sorted by link
func (m Mapping) Links() []Link {
	return m.filter(func(string, string) bool { return true })
}

func (m Mapping) filter(keep func(href, label string) bool) []Link {
	var out []Link
	for href, label := range m {
		if keep(href, label) {
			out = append(out, Link{Href: href, Label: label})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Href < out[j].Href })
	return out
}

// Extract reads a competition page and maps every link in its result table to a name.
//
// The result table is the leaf table mentioning "starting". Empty cells take the
// text of the cell above, and the text of columns without links prefixes the label
// of every linked cell in the same row. When several tables qualify the first one is
// used; the number of candidates is returned so callers can flag the page.
func Extract(r io.Reader) (Mapping, int, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing HTML: %w", err)
	}

	tables := doc.Find("table").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		if sel.Find("table").Length() > 0 {
			return false
		}
		html, err := goquery.OuterHtml(sel)
		return err == nil && strings.Contains(strings.ToLower(html), "starting")
	})
	if tables.Length() == 0 {
		return nil, 0, ErrNoLinkTable
	}

	texts, hrefs := readTable(tables.First())
	return buildMapping(texts, hrefs), tables.Length(), nil
}

// readTable returns the cell texts and link targets of a table as equally sized
// grids. Missing cells are nil.
func readTable(table *goquery.Selection) ([][]*string, [][]string) {
	var texts [][]*string
	var hrefs [][]string
	width := 0

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var rowTexts []*string
		var rowHrefs []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			href, _ := td.Find("a").First().Attr("href")
			rowHrefs = append(rowHrefs, href)

			if text := td.Text(); text != "" {
				rowTexts = append(rowTexts, &text)
			} else {
				rowTexts = append(rowTexts, nil)
			}
		})
		if len(rowTexts) > width {
			width = len(rowTexts)
		}
		texts = append(texts, rowTexts)
		hrefs = append(hrefs, rowHrefs)
	})

	for i := range texts {
		for len(texts[i]) < width {
			texts[i] = append(texts[i], nil)
			hrefs[i] = append(hrefs[i], "")
		}
	}
	return texts, hrefs
}

func buildMapping(texts [][]*string, hrefs [][]string) Mapping {
	if len(texts) == 0 {
		return Mapping{}
	}
	width := len(texts[0])

	// forward fill each column
	filled := make([][]string, len(texts))
	last := make([]*string, width)
	for i, row := range texts {
		filled[i] = make([]string, width)
		for j, cell := range row {
			if cell != nil {
				last[j] = cell
			}
			if last[j] != nil {
				filled[i][j] = *last[j]
			}
		}
	}

	linked := make([]bool, width)
	for _, row := range hrefs {
		for j, href := range row {
			if href != "" {
				linked[j] = true
			}
		}
	}

	m := make(Mapping)
	for i, row := range filled {
		var prefix []string
		for j, text := range row {
			if !linked[j] {
				prefix = append(prefix, text)
			}
		}
		p := strings.Join(prefix, " ")

		for j, href := range hrefs[i] {
			if href == "" {
				continue
			}
			m[href] = strings.Join(strings.Fields(p+" "+row[j]), " ")
		}
	}
	return m
}
