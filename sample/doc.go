// Package sample generates review PDFs: a labelled header block, some body
// text, and FreeText comments. The CLI's sample command and the tests of
// the other packages use it to produce realistic input.
package sample
