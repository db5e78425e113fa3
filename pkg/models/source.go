package models

// Source is the fully buffered content of one input file.
type Source struct {
	Path  string
	Lines []string
}

// Rejection is a line that looked numeric but could not be parsed.
type Rejection struct {
	Path   string
	LineNo int // 1-based position within Path
	Text   string
	Err    error
}
