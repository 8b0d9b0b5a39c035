package cli

import (
	"github.com/YuminosukeSato/churnguard/core/record"
	"github.com/YuminosukeSato/churnguard/preprocessing"
)

// cellParser turns command-line and CSV text into record values.
// Columns with an encoder stay strings so "1.0" or "00501" still match
// their class; other columns are inferred with record.Parse.
type cellParser map[string]struct{}

func newCellParser(encoders preprocessing.EncoderSet) cellParser {
	p := make(cellParser, len(encoders))
	for col := range encoders {
		p[col] = struct{}{}
	}
	return p
}

func (p cellParser) value(column, text string) record.Value {
	if _, ok := p[column]; ok {
		return record.String(text)
	}
	return record.Parse(text)
}
