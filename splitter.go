package console

// pipeOffsets returns the byte offsets of every '|' in line that sits
// outside a quote span. Only the quote character that opened a span closes
// it; the other quote character inside a span is inert. Backslashes are not
// interpreted here.
func pipeOffsets(line string) []int {
	var offsets []int
	var open byte
	for i := 0; i < len(line); i++ {
		switch ch := line[i]; ch {
		case '\'', '"':
			switch open {
			case 0:
				open = ch
			case ch:
				open = 0
			}
		case '|':
			if open == 0 {
				offsets = append(offsets, i)
			}
		}
	}
	return offsets
}

// SplitPipeline splits a raw input line into stage strings on unquoted '|'.
// A line without unquoted pipes comes back as a single element equal to the
// input. It never fails; quoting errors surface when a stage is tokenized.
func SplitPipeline(line string) []string {
	offsets := pipeOffsets(line)
	stages := make([]string, 0, len(offsets)+1)
	start := 0
	for _, off := range offsets {
		stages = append(stages, line[start:off])
		start = off + 1
	}
	return append(stages, line[start:])
}
