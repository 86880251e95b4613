package core

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/tsawler/crsheet/internal/filters"
)

// Decode applies the stream's /Filter chain and returns the decoded bytes.
// Image codecs (DCT, JPX, JBIG2, CCITT) end the chain and their input is
// returned unchanged, since nothing here renders images.
func (s *Stream) Decode() ([]byte, error) {
	names, params, err := s.filterChain()
	if err != nil {
		return nil, err
	}

	data := s.Data
	for i, name := range names {
		if isImageFilter(name) {
			return data, nil
		}
		data, err = decodeWithFilter(data, name, params[i])
		if err != nil {
			return nil, fmt.Errorf("filter %d (%s) failed: %w", i, name, err)
		}
	}
	return data, nil
}

// filterChain normalises /Filter and /DecodeParms into parallel slices
func (s *Stream) filterChain() ([]string, []Dict, error) {
	var names []string
	switch f := s.Dict.Get("Filter").(type) {
	case nil:
		return nil, nil, nil
	case Name:
		names = []string{string(f)}
	case Array:
		for i, item := range f {
			n, ok := item.(Name)
			if !ok {
				return nil, nil, fmt.Errorf("filter %d is not a name: %T", i, item)
			}
			names = append(names, string(n))
		}
	default:
		return nil, nil, fmt.Errorf("invalid Filter type: %T", f)
	}

	params := make([]Dict, len(names))
	switch p := s.Dict.Get("DecodeParms").(type) {
	case Dict:
		params[0] = p
	case Array:
		for i := range params {
			if d, ok := p.Get(i).(Dict); ok {
				params[i] = d
			}
		}
	}
	return names, params, nil
}

func decodeWithFilter(data []byte, name string, params Dict) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return filters.FlateDecode(data, toFilterParams(params))
	case "ASCIIHexDecode", "AHx":
		return filters.ASCIIHexDecode(data)
	case "ASCII85Decode", "A85":
		return filters.ASCII85Decode(data)
	case "RunLengthDecode", "RL":
		return filters.RunLengthDecode(data)
	case "Crypt":
		return nil, fmt.Errorf("encrypted streams are not supported")
	}
	return nil, fmt.Errorf("unsupported filter: %s", name)
}

func isImageFilter(name string) bool {
	switch name {
	case "DCTDecode", "DCT", "JPXDecode", "JBIG2Decode", "CCITTFaxDecode", "CCF":
		return true
	}
	return false
}

// toFilterParams converts numeric and boolean decode parameters to plain Go values
func toFilterParams(dict Dict) filters.Params {
	if dict == nil {
		return nil
	}
	params := make(filters.Params, len(dict))
	for k, v := range dict {
		switch obj := v.(type) {
		case Int:
			params[k] = int(obj)
		case Real:
			params[k] = int(obj)
		case Bool:
			params[k] = bool(obj)
		}
	}
	return params
}

func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}

func atoi(b []byte) int {
	n, _ := strconv.Atoi(string(b))
	return n
}
