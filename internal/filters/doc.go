// Package filters implements the stream decoders needed to read text and
// annotation data out of PDF files: FlateDecode (with PNG and TIFF
// predictors), ASCIIHexDecode, ASCII85Decode and RunLengthDecode.
//
// Decode parameters arrive as a [Params] map built from /DecodeParms:
//
//	decoded, err := filters.FlateDecode(data, filters.Params{
//	    "Predictor": 12,
//	    "Columns":   5,
//	})
package filters
