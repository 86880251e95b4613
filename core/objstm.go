package core

import (
	"fmt"
)

// ObjectStream is a PDF 1.5 object stream (/Type /ObjStm): several
// non-stream objects packed into one compressed stream.
type ObjectStream struct {
	stream  *Stream
	n       int
	first   int
	decoded []byte
	numbers []int
	offsets []int
	cache   map[int]Object
}

// NewObjectStream validates the stream dictionary; the data is decoded
// lazily on first access
func NewObjectStream(stream *Stream) (*ObjectStream, error) {
	if stream == nil {
		return nil, fmt.Errorf("stream is nil")
	}
	if t, _ := stream.Dict.GetName("Type"); t != "ObjStm" {
		return nil, fmt.Errorf("stream is not an object stream")
	}

	n, ok := stream.Dict.GetInt("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("object stream has invalid /N")
	}
	first, ok := stream.Dict.GetInt("First")
	if !ok || first < 0 {
		return nil, fmt.Errorf("object stream has invalid /First")
	}

	return &ObjectStream{
		stream: stream,
		n:      int(n),
		first:  int(first),
		cache:  make(map[int]Object),
	}, nil
}

// N returns the number of objects in the stream
func (os *ObjectStream) N() int {
	return os.n
}

func (os *ObjectStream) load() error {
	if os.decoded != nil {
		return nil
	}

	decoded, err := os.stream.Decode()
	if err != nil {
		return fmt.Errorf("failed to decode object stream: %w", err)
	}
	if os.first > len(decoded) {
		return fmt.Errorf("object stream /First %d exceeds data length %d", os.first, len(decoded))
	}

	lexer := NewLexer(bytesReader(decoded[:os.first]))
	numbers := make([]int, 0, os.n)
	offsets := make([]int, 0, os.n)
	for i := 0; i < os.n; i++ {
		numTok, err := lexer.NextToken()
		if err != nil {
			return err
		}
		offTok, err := lexer.NextToken()
		if err != nil {
			return err
		}
		if numTok.Type != TokenInteger || offTok.Type != TokenInteger {
			return fmt.Errorf("object stream header entry %d is malformed", i)
		}
		numbers = append(numbers, atoi(numTok.Value))
		offsets = append(offsets, atoi(offTok.Value))
	}

	os.decoded = decoded
	os.numbers = numbers
	os.offsets = offsets
	return nil
}

// ObjectNumbers lists the object numbers stored in the stream, in order
func (os *ObjectStream) ObjectNumbers() ([]int, error) {
	if err := os.load(); err != nil {
		return nil, err
	}
	return append([]int(nil), os.numbers...), nil
}

// GetObjectByIndex returns the object at position index and its number
func (os *ObjectStream) GetObjectByIndex(index int) (Object, int, error) {
	if err := os.load(); err != nil {
		return nil, 0, err
	}
	if index < 0 || index >= len(os.offsets) {
		return nil, 0, fmt.Errorf("index %d out of range [0, %d)", index, len(os.offsets))
	}
	if obj, ok := os.cache[index]; ok {
		return obj, os.numbers[index], nil
	}

	start := os.first + os.offsets[index]
	if start >= len(os.decoded) {
		return nil, 0, fmt.Errorf("object offset %d exceeds data length %d", start, len(os.decoded))
	}
	end := len(os.decoded)
	if index+1 < len(os.offsets) && os.first+os.offsets[index+1] <= end {
		end = os.first + os.offsets[index+1]
	}
	if end < start {
		end = len(os.decoded)
	}

	obj, err := NewParserBytes(os.decoded[start:end], 0).ParseObject()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse object at index %d: %w", index, err)
	}
	os.cache[index] = obj
	return obj, os.numbers[index], nil
}

// GetObjectByNumber returns the object with the given number
func (os *ObjectStream) GetObjectByNumber(objNum int) (Object, error) {
	if err := os.load(); err != nil {
		return nil, err
	}
	for i, n := range os.numbers {
		if n == objNum {
			obj, _, err := os.GetObjectByIndex(i)
			return obj, err
		}
	}
	return nil, fmt.Errorf("object %d not found in object stream", objNum)
}
