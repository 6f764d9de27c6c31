// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markdown holds the text-side plumbing of the pipeline: splitting
// a document into typed fragments around embedded images, building bounded
// context windows for the vision model, and output normalization.
package markdown

import "regexp"

// imageDataURIPattern matches ![alt](data:image/<type>;base64,<B64...>).
var imageDataURIPattern = regexp.MustCompile(
	`!\[[^\]]*\]\((data:image/[a-zA-Z0-9.+-]+;base64,[A-Za-z0-9+/=\r\n]+)\)`,
)

// imageLinkPattern matches any other Markdown image reference.
var imageLinkPattern = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)

// FragmentKind distinguishes plain text from embedded-image markers.
type FragmentKind string

const (
	FragmentText  FragmentKind = "text"
	FragmentImage FragmentKind = "image"
)

// Fragment is one typed slice of the source document. Concatenating the
// Raw fields of all fragments, in order, reproduces the input exactly;
// replacement happens by rebuilding the list, never by in-place splicing.
type Fragment struct {
	Kind FragmentKind

	// Raw is the exact source text of the fragment.
	Raw string

	// DataURL holds the embedded data URL for image fragments.
	DataURL string

	// Start and End are the byte offsets of Raw within the source
	// document, used to build the surrounding context window.
	Start int
	End   int
}

// Tokenize splits doc into an ordered fragment list: text fragments
// interleaved with one image fragment per embedded data-URI marker.
// A document without markers yields a single text fragment.
func Tokenize(doc string) []Fragment {
	matches := imageDataURIPattern.FindAllStringSubmatchIndex(doc, -1)
	if len(matches) == 0 {
		return []Fragment{{Kind: FragmentText, Raw: doc, End: len(doc)}}
	}

	var fragments []Fragment
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > last {
			fragments = append(fragments, Fragment{
				Kind:  FragmentText,
				Raw:   doc[last:start],
				Start: last,
				End:   start,
			})
		}
		fragments = append(fragments, Fragment{
			Kind:    FragmentImage,
			Raw:     doc[start:end],
			DataURL: doc[m[2]:m[3]],
			Start:   start,
			End:     end,
		})
		last = end
	}
	if last < len(doc) {
		fragments = append(fragments, Fragment{
			Kind:  FragmentText,
			Raw:   doc[last:],
			Start: last,
			End:   len(doc),
		})
	}
	return fragments
}
