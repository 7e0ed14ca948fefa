// Package protocol recovers per-skater, per-element, per-judge score tables from the
// text layout of ISU judges' scoring protocols.
//
// The input is the reading-order text of a protocol PDF, one string per physical line.
// Lines are classified into typed tokens (SplitLine), grouped into one block per
// competitor (Segment), and each block is parsed into a SkaterRecord (Parser.ParseSkater)
// whose technical and component rows are flattened into Rows. Layout drift between
// seasons and competitions is captured by LayoutRules; annotation marks by MarkSet.
//
// Malformed blocks never produce partial output: ParseSkater returns a *ParseError and
// the document driver skips that skater while keeping the rest of the document.
package protocol
