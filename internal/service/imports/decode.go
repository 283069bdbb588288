package imports

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/config"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/imports"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decode returns content as UTF-8 text without a byte order mark. Content
// that is not valid UTF-8 is converted from Windows-1252 when that fallback
// is configured and rejected otherwise.
func decode(content []byte, fallback string) ([]byte, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if utf8.Valid(content) {
		return content, nil
	}

	if fallback == config.EncodingFallbackWindows1252 {
		out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), content)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", imports.ErrEncoding, err)
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: invalid byte sequence at offset %d", imports.ErrEncoding, firstInvalidByte(content))
}

func firstInvalidByte(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
