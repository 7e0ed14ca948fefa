package protocol

// Segment splits the classified lines of a document into one block per competitor.
//
// A new block starts at a line whose first token is a number when the line before it
// starts with a string (the tail of the previous competitor's component table). The
// blocks cover the input exactly, in order, without gaps or overlaps.
func Segment(lines []Line) []Block {
	if len(lines) == 0 {
		return nil
	}

	var starts []int
	for i := 0; i < len(lines)-1; i++ {
		if lines[i].startsWithString() && lines[i+1].startsWithNumber() {
			starts = append(starts, i+1)
		}
	}

	blocks := make([]Block, 0, len(starts)+1)
	current := 0
	for _, start := range starts {
		blocks = append(blocks, Block(lines[current:start:start]))
		current = start
	}
	blocks = append(blocks, Block(lines[current:]))

	return blocks
}
