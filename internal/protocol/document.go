package protocol

import "errors"

// DocumentResult is everything parsed from one protocol document. It is a plain value
// so concurrent workers can hand it to a single reducer.
type DocumentResult struct {
	Document Document
	Rows     []Row
	Skaters  int
	Failures []*ParseError
	Warnings []Warning
}

// ParseDocument runs the whole layout parser over the reading-order lines of a
// document. Skaters whose block cannot be parsed are recorded in Failures and left
// out; all other skaters still produce rows.
func (p *Parser) ParseDocument(texts []string, doc Document) DocumentResult {
	doc.Layout = p.rules.Lookup(doc.Competition, doc.Season)
	result := DocumentResult{Document: doc}

	lines := Classify(texts, doc.Layout)
	if doc.Layout.Reversed {
		reverseInPlace(lines)
	}

	for _, block := range Segment(lines) {
		if len(block) == 0 {
			continue
		}

		rec, warnings, err := p.ParseSkater(block, doc)
		result.Warnings = append(result.Warnings, warnings...)
		if err != nil {
			var pe *ParseError
			if !errors.As(err, &pe) {
				pe = &ParseError{Competition: doc.Competition, Source: doc.Source, Err: err}
			}
			result.Failures = append(result.Failures, pe)
			continue
		}

		result.Skaters++
		result.Rows = append(result.Rows, rec.Rows(doc)...)
	}

	return result
}
