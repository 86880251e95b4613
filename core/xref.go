package core

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
)

// XRefEntryType distinguishes the three kinds of cross-reference entries
type XRefEntryType int

const (
	XRefFree       XRefEntryType = iota // f entries and type 0 stream entries
	XRefInUse                           // n entries: object at a byte offset
	XRefCompressed                      // type 2 stream entries: object inside an object stream
)

// XRefEntry locates one object
type XRefEntry struct {
	Type       XRefEntryType
	Offset     int64 // byte offset of "num gen obj" for in-use entries
	Generation int
	StreamNum  int // object stream number for compressed entries
	Index      int // index within that object stream
}

// InUse reports whether the entry points at a live object
func (e *XRefEntry) InUse() bool {
	return e.Type != XRefFree
}

// XRefTable maps object numbers to their locations
type XRefTable struct {
	Entries map[int]*XRefEntry
	Trailer Dict

	// IsStream is true when the newest section was a cross-reference stream
	IsStream bool
	// StartXRef is the offset named by the file's startxref keyword
	StartXRef int64
}

// NewXRefTable creates an empty table
func NewXRefTable() *XRefTable {
	return &XRefTable{
		Entries: make(map[int]*XRefEntry),
		Trailer: make(Dict),
	}
}

// Get returns the entry for objNum
func (x *XRefTable) Get(objNum int) (*XRefEntry, bool) {
	entry, ok := x.Entries[objNum]
	return entry, ok
}

// Set stores the entry for objNum
func (x *XRefTable) Set(objNum int, entry *XRefEntry) {
	x.Entries[objNum] = entry
}

// Size returns the number of entries
func (x *XRefTable) Size() int {
	return len(x.Entries)
}

// MaxObjectNumber returns the highest object number with an entry
func (x *XRefTable) MaxObjectNumber() int {
	max := 0
	for n := range x.Entries {
		if n > max {
			max = n
		}
	}
	return max
}

// mergeOlder copies entries from an older section that this table does not
// already define. Trailer keys missing here are taken from the older trailer.
func (x *XRefTable) mergeOlder(older *XRefTable) {
	for num, entry := range older.Entries {
		if _, exists := x.Entries[num]; !exists {
			x.Entries[num] = entry
		}
	}
	for key, val := range older.Trailer {
		if !x.Trailer.Has(key) {
			x.Trailer[key] = val
		}
	}
}

// XRefParser reads cross-reference information from a complete file image
type XRefParser struct {
	data []byte
}

// NewXRefParser creates a parser over the file contents
func NewXRefParser(data []byte) *XRefParser {
	return &XRefParser{data: data}
}

// FindXRef returns the offset following the last startxref keyword
func (x *XRefParser) FindXRef() (int64, error) {
	tail := x.data
	if len(tail) > 4096 {
		tail = tail[len(tail)-4096:]
	}
	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("startxref not found")
	}

	lexer := NewLexer(bytes.NewReader(tail[idx+len("startxref"):]))
	tok, err := lexer.NextToken()
	if err != nil || tok.Type != TokenInteger {
		return 0, fmt.Errorf("invalid startxref offset")
	}
	offset, err := strconv.ParseInt(string(tok.Value), 10, 64)
	if err != nil || offset < 0 || offset >= int64(len(x.data)) {
		return 0, fmt.Errorf("startxref offset %s out of range", tok.Value)
	}
	return offset, nil
}

// ParseXRef parses the section at offset, which may be a classic table or
// a cross-reference stream.
func (x *XRefParser) ParseXRef(offset int64) (*XRefTable, error) {
	if offset < 0 || offset >= int64(len(x.data)) {
		return nil, fmt.Errorf("xref offset %d out of range", offset)
	}

	lexer := NewLexerAt(bytes.NewReader(x.data[offset:]), offset)
	tok, err := lexer.NextToken()
	if err != nil {
		return nil, fmt.Errorf("failed to read xref section: %w", err)
	}

	switch {
	case tok.Is("xref"):
		return x.parseTable(lexer)
	case tok.Type == TokenInteger:
		return x.parseStream(offset)
	}
	return nil, fmt.Errorf("no xref section at offset %d", offset)
}

// parseTable parses subsections until the trailer keyword
func (x *XRefParser) parseTable(lexer *Lexer) (*XRefTable, error) {
	table := NewXRefTable()

	for {
		tok, err := lexer.NextToken()
		if err != nil {
			return nil, fmt.Errorf("failed to read xref subsection: %w", err)
		}
		if tok.Is("trailer") {
			trailer, err := x.parseTrailer(lexer.Pos())
			if err != nil {
				return nil, fmt.Errorf("failed to parse trailer: %w", err)
			}
			table.Trailer = trailer
			return table, nil
		}
		if tok.Type != TokenInteger {
			return nil, fmt.Errorf("invalid xref subsection header %q", tok.Value)
		}
		first, _ := strconv.Atoi(string(tok.Value))

		tok, err = lexer.NextToken()
		if err != nil || tok.Type != TokenInteger {
			return nil, fmt.Errorf("invalid xref subsection count")
		}
		count, _ := strconv.Atoi(string(tok.Value))

		for i := 0; i < count; i++ {
			entry, err := readTableEntry(lexer)
			if err != nil {
				return nil, fmt.Errorf("failed to parse xref entry %d: %w", first+i, err)
			}
			// Some writers start the first subsection at 1 while still
			// listing the free head of the list; shift it back to 0.
			if i == 0 && first == 1 && entry.Type == XRefFree && entry.Generation == 65535 {
				first = 0
			}
			table.Set(first+i, entry)
		}
	}
}

func readTableEntry(lexer *Lexer) (*XRefEntry, error) {
	offTok, err := lexer.NextToken()
	if err != nil {
		return nil, err
	}
	genTok, err := lexer.NextToken()
	if err != nil {
		return nil, err
	}
	flagTok, err := lexer.NextToken()
	if err != nil {
		return nil, err
	}
	if offTok.Type != TokenInteger || genTok.Type != TokenInteger || flagTok.Type != TokenKeyword {
		return nil, fmt.Errorf("malformed entry")
	}

	offset, _ := strconv.ParseInt(string(offTok.Value), 10, 64)
	gen, _ := strconv.Atoi(string(genTok.Value))

	switch string(flagTok.Value) {
	case "n":
		return &XRefEntry{Type: XRefInUse, Offset: offset, Generation: gen}, nil
	case "f":
		return &XRefEntry{Type: XRefFree, Generation: gen}, nil
	}
	return nil, fmt.Errorf("invalid in-use flag %q", flagTok.Value)
}

func (x *XRefParser) parseTrailer(offset int64) (Dict, error) {
	parser := NewParserBytes(x.data[offset:], offset)
	obj, err := parser.ParseObject()
	if err != nil {
		return nil, err
	}
	dict, ok := obj.(Dict)
	if !ok {
		return nil, fmt.Errorf("trailer is not a dictionary, got %T", obj)
	}
	return dict, nil
}

// parseStream parses a cross-reference stream object (PDF 1.5)
func (x *XRefParser) parseStream(offset int64) (*XRefTable, error) {
	parser := NewParserBytes(x.data[offset:], offset)
	indObj, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse xref stream: %w", err)
	}
	stream, ok := indObj.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("object at offset %d is not a stream", offset)
	}
	if t, _ := stream.Dict.GetName("Type"); t != "XRef" {
		return nil, fmt.Errorf("stream at offset %d is not an xref stream", offset)
	}
	table, err := DecodeXRefStream(stream)
	if err != nil {
		return nil, err
	}
	// the stream object itself is reachable through the table
	if _, exists := table.Entries[indObj.Ref.Number]; !exists {
		table.Set(indObj.Ref.Number, &XRefEntry{Type: XRefInUse, Offset: offset})
	}
	return table, nil
}

// DecodeXRefStream expands the binary rows of a cross-reference stream
func DecodeXRefStream(stream *Stream) (*XRefTable, error) {
	wArr, ok := stream.Dict.GetArray("W")
	if !ok || len(wArr) < 3 {
		return nil, fmt.Errorf("xref stream missing /W")
	}
	var widths [3]int
	for i := 0; i < 3; i++ {
		w, ok := wArr.Get(i).(Int)
		if !ok || w < 0 || w > 8 {
			return nil, fmt.Errorf("invalid /W entry %v", wArr.Get(i))
		}
		widths[i] = int(w)
	}
	rowLen := widths[0] + widths[1] + widths[2]
	if rowLen == 0 {
		return nil, fmt.Errorf("xref stream has zero-width rows")
	}

	size, _ := stream.Dict.GetInt("Size")
	index := Array{Int(0), size}
	if idx, ok := stream.Dict.GetArray("Index"); ok && len(idx)%2 == 0 {
		index = idx
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode xref stream: %w", err)
	}

	table := NewXRefTable()
	table.IsStream = true
	table.Trailer = stream.Dict.Clone()

	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		first, _ := index.Get(i).(Int)
		count, _ := index.Get(i + 1).(Int)
		for j := 0; j < int(count); j++ {
			if pos+rowLen > len(data) {
				return table, nil
			}
			row := data[pos : pos+rowLen]
			pos += rowLen

			kind := int64(1)
			if widths[0] > 0 {
				kind = readBigEndian(row[:widths[0]])
			}
			f2 := readBigEndian(row[widths[0] : widths[0]+widths[1]])
			f3 := readBigEndian(row[widths[0]+widths[1]:])

			num := int(first) + j
			switch kind {
			case 0:
				table.Set(num, &XRefEntry{Type: XRefFree, Generation: int(f3)})
			case 1:
				table.Set(num, &XRefEntry{Type: XRefInUse, Offset: f2, Generation: int(f3)})
			case 2:
				table.Set(num, &XRefEntry{Type: XRefCompressed, StreamNum: int(f2), Index: int(f3)})
			}
		}
	}
	return table, nil
}

func readBigEndian(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

// ParseAll reads the newest section and follows /Prev and /XRefStm links,
// returning a single table where newer entries shadow older ones.
func (x *XRefParser) ParseAll() (*XRefTable, error) {
	start, err := x.FindXRef()
	if err != nil {
		return nil, err
	}

	merged, err := x.ParseXRef(start)
	if err != nil {
		return nil, err
	}
	merged.StartXRef = start

	visited := map[int64]bool{start: true}
	current := merged.Trailer
	for {
		if stmOff, ok := current.GetInt("XRefStm"); ok && !visited[int64(stmOff)] {
			visited[int64(stmOff)] = true
			if hybrid, err := x.ParseXRef(int64(stmOff)); err == nil {
				merged.mergeOlder(hybrid)
			}
		}

		prev, ok := current.GetInt("Prev")
		if !ok || visited[int64(prev)] {
			break
		}
		visited[int64(prev)] = true

		older, err := x.ParseXRef(int64(prev))
		if err != nil {
			return nil, fmt.Errorf("failed to parse previous xref at %d: %w", prev, err)
		}
		merged.mergeOlder(older)
		current = older.Trailer
	}

	// keys describing a single section do not belong to the merged trailer
	for _, key := range []string{"Prev", "XRefStm", "W", "Index", "Filter", "DecodeParms", "Length", "Type"} {
		merged.Trailer.Delete(key)
	}
	return merged, nil
}

var objHeader = regexp.MustCompile(`(\d+)[\x00\t\n\f\r ]+(\d+)[\x00\t\n\f\r ]+obj\b`)

// Reconstruct rebuilds the table by scanning the file for "num gen obj"
// headers. The last definition of an object number wins, as it would in
// an incremental update. Trailer dictionaries found along the way are
// merged so /Root and /Info survive when present.
func (x *XRefParser) Reconstruct() *XRefTable {
	table := NewXRefTable()

	for _, m := range objHeader.FindAllSubmatchIndex(x.data, -1) {
		if m[0] > 0 && !isWhitespace(x.data[m[0]-1]) && !isDelimiter(x.data[m[0]-1]) {
			continue
		}
		num, err := strconv.Atoi(string(x.data[m[2]:m[3]]))
		if err != nil {
			continue
		}
		gen, _ := strconv.Atoi(string(x.data[m[4]:m[5]]))
		table.Set(num, &XRefEntry{Type: XRefInUse, Offset: int64(m[0]), Generation: gen})
	}

	search := x.data
	base := 0
	for {
		idx := bytes.Index(search, []byte("trailer"))
		if idx < 0 {
			break
		}
		off := int64(base + idx + len("trailer"))
		if trailer, err := x.parseTrailer(off); err == nil {
			for k, v := range trailer {
				table.Trailer[k] = v
			}
		}
		base += idx + len("trailer")
		search = x.data[base:]
	}
	for _, key := range []string{"Prev", "XRefStm"} {
		table.Trailer.Delete(key)
	}
	table.Trailer["Size"] = Int(table.MaxObjectNumber() + 1)
	return table
}
