package model

import (
	"io"
	"strconv"
	"strings"
)

// FieldReader is a simple token reader for our whitespace-delimited data
// formats. Lines whose first non-blank character is '#' are comments and are
// dropped before tokenizing.
type FieldReader struct {
	Pos    int
	Fields []string
}

// NewFieldReader constructs a field reader around the given data.
func NewFieldReader(data string) *FieldReader {
	lines := strings.Split(data, "\n")
	kept := make([]string, 0, len(lines))
	for _, ln := range lines {
		t := strings.TrimSpace(ln)
		if len(t) < 1 || t[0] == '#' {
			continue
		}
		kept = append(kept, t)
	}

	return &FieldReader{0, strings.Fields(strings.Join(kept, "\n"))}
}

// Read returns the next whitespace-delimited token.
func (fr *FieldReader) Read() (string, error) {
	if fr.Pos >= len(fr.Fields) {
		return "", io.EOF
	}
	p := fr.Pos
	fr.Pos++
	return fr.Fields[p], nil
}

// ReadInt reads the next token as an int.
func (fr *FieldReader) ReadInt() (int, error) {
	s, err := fr.Read()
	if err != nil {
		return 0, err
	}

	i, err := strconv.ParseInt(s, 10, 0)
	return int(i), err
}

// ReadFloat reads the next token as a float.
func (fr *FieldReader) ReadFloat() (float64, error) {
	s, err := fr.Read()
	if err != nil {
		return 0, err
	}

	return strconv.ParseFloat(s, 64)
}
