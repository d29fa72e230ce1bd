package conda

import (
	"bytes"

	"go.trai.ch/zerr"
)

// replacePrefix substitutes the build prefix recorded in a file with the install prefix.
// In binary files every NUL terminated string that holds the placeholder keeps its length:
// the shorter result is padded with NUL bytes.
func replacePrefix(data []byte, placeholder, prefix string, binary bool) ([]byte, error) {
	old, repl := []byte(placeholder), []byte(prefix)
	if !binary {
		return bytes.ReplaceAll(data, old, repl), nil
	}
	if len(repl) > len(old) {
		return nil, zerr.With(zerr.New("prefix is longer than the placeholder of a binary file"), "prefix", prefix)
	}

	out := bytes.Clone(data)
	for start := 0; ; {
		idx := bytes.Index(out[start:], old)
		if idx < 0 {
			return out, nil
		}
		begin := start + idx
		end := len(out)
		if nul := bytes.IndexByte(out[begin:], 0); nul >= 0 {
			end = begin + nul
		}

		replaced := bytes.ReplaceAll(out[begin:end], old, repl)
		n := copy(out[begin:end], replaced)
		clear(out[begin+n : end])
		start = end
	}
}
