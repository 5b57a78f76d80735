package khmer

// Segment is a run of normalized text. Corrected segments cover a syllable
// whose characters were reordered.
type Segment struct {
	Text      string `json:"text"`
	Corrected bool   `json:"corrected"`
}

// SegmentScanner yields the segments of a [Result] in order. It is lazy and
// single use, in the manner of bufio.Scanner:
//
//	sc := khmer.Normalize(s).Segments()
//	for sc.Scan() {
//	    seg := sc.Segment()
//	    ...
//	}
type SegmentScanner struct {
	chars []rune
	fixes []span
	pos   int
	next  int
	seg   Segment
}

// Scan advances to the next segment and reports whether there was one.
func (s *SegmentScanner) Scan() bool {
	if s.pos >= len(s.chars) {
		return false
	}

	if s.next < len(s.fixes) {
		fix := s.fixes[s.next]
		if s.pos == fix.start {
			s.seg = Segment{Text: string(s.chars[fix.start:fix.end]), Corrected: true}
			s.pos = fix.end
			s.next++
			return true
		}
		s.seg = Segment{Text: string(s.chars[s.pos:fix.start])}
		s.pos = fix.start
		return true
	}

	s.seg = Segment{Text: string(s.chars[s.pos:])}
	s.pos = len(s.chars)
	return true
}

// Segment returns the segment produced by the last call to Scan.
func (s *SegmentScanner) Segment() Segment {
	return s.seg
}

// CollectSegments drains the scanner into a slice.
func CollectSegments(s *SegmentScanner) []Segment {
	var out []Segment
	for s.Scan() {
		out = append(out, s.Segment())
	}
	return out
}
