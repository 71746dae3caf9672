package dxf

import (
	"strconv"
	"strings"
)

// Scanner walks raw DXF text as a stream of group-code/value tags.
//
// DXF alternates a group-code line with a value line. The scanner is
// tolerant: blank lines and leading whitespace are skipped, and a line
// that should hold a group code but does not parse as an integer is
// recorded as a syntax issue and skipped, so one bad line never aborts
// the whole file. A code line with no following value line is likewise
// recorded and the scan ends.
type Scanner struct {
	lines  []string
	pos    int // index of the next unread line
	tag    Tag
	issues []Issue
	valid  int // count of successfully scanned tags
}

// NewScanner creates a scanner over the raw file text.
func NewScanner(text string) *Scanner {
	// Normalize CRLF so line numbers stay meaningful on Windows exports.
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return &Scanner{lines: strings.Split(text, "\n")}
}

// Next advances to the next tag. It returns false at end of input.
func (s *Scanner) Next() bool {
	for s.pos < len(s.lines) {
		codeLine := s.lines[s.pos]
		codeLineNo := s.pos + 1
		s.pos++

		codeStr := strings.TrimSpace(codeLine)
		if codeStr == "" {
			continue
		}

		code, err := strconv.Atoi(codeStr)
		if err != nil {
			s.issues = append(s.issues, Issue{
				Kind:    IssueSyntax,
				Line:    codeLineNo,
				Message: "expected numeric group code, got " + strconv.Quote(codeStr),
			})
			continue
		}

		if s.pos >= len(s.lines) {
			s.issues = append(s.issues, Issue{
				Kind:    IssueSyntax,
				Line:    codeLineNo,
				Message: "group code at end of input has no value line",
			})
			return false
		}

		// The value keeps leading whitespace: DXF text values may start
		// with significant spaces.
		value := strings.TrimRight(s.lines[s.pos], "\r")
		s.pos++

		s.tag = Tag{Code: code, Value: value, Line: codeLineNo}
		s.valid++
		return true
	}
	return false
}

// Tag returns the tag produced by the last successful Next.
func (s *Scanner) Tag() Tag {
	return s.tag
}

// Issues returns syntax issues accumulated so far.
func (s *Scanner) Issues() []Issue {
	return s.issues
}

// ValidTags returns how many tags scanned successfully. Zero after a full
// scan means the input had no usable DXF structure at all.
func (s *Scanner) ValidTags() int {
	return s.valid
}
