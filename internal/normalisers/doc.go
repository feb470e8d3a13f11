// Package normalisers turns downloaded files into plain text.
//
// Each subpackage handles one family of formats and implements
// driven.TextExtractor. Registry selects an extractor by file extension.
package normalisers
