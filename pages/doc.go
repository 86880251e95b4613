// Package pages walks the page tree and exposes each page's attributes,
// content streams and annotations.
//
// Inheritable attributes (Resources, MediaBox, CropBox, Rotate) are
// collected while walking down from the root, so a [Page] answers with the
// nearest definition. [Page.Annotations] returns the /Annots array in order
// with text entries decoded:
//
//	tree := pages.NewPageTree(pagesDict, resolver)
//	list, _ := tree.Pages()
//	annots, _ := list[0].Annotations()
package pages
