package engine

import "murmur/internal/segment"

func segFragment(text string, start, end float64) segment.Fragment {
	return segment.Fragment{Text: text, Start: start, End: end}
}
