package plaintext

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/h24486064/plagiarism-detection/internal/logger"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts submission bytes to UTF-8 text.
//
// UTF-8 (with or without BOM) and BOM-marked UTF-16 are decoded directly.
// Anything else is run through charset detection, which covers the Big5 and
// GB18030 files common among Chinese theses. Bytes that cannot be decoded are
// dropped.
func Decode(b []byte) string {
	switch {
	case bytes.HasPrefix(b, bomUTF8):
		b = b[len(bomUTF8):]
	case bytes.HasPrefix(b, bomUTF16LE):
		if out, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(b); err == nil {
			return string(out)
		}
	case bytes.HasPrefix(b, bomUTF16BE):
		if out, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Bytes(b); err == nil {
			return string(out)
		}
	}

	if utf8.Valid(b) {
		return string(b)
	}

	if out, charset, ok := decodeDetected(b); ok {
		logger.Debug("Decoded submission as %s", charset)
		return out
	}

	logger.Warn("Unknown text encoding, dropping invalid bytes")
	return strings.ToValidUTF8(string(b), "")
}

// decodeDetected tries the detector's candidates in confidence order and
// returns the first decoding free of replacement characters.
func decodeDetected(b []byte) (string, string, bool) {
	results, err := chardet.NewTextDetector().DetectAll(b)
	if err != nil {
		return "", "", false
	}

	for _, r := range results {
		enc, err := htmlindex.Get(r.Charset)
		if err != nil {
			enc, err = htmlindex.Get(strings.ReplaceAll(r.Charset, "-", ""))
		}
		if err != nil {
			continue
		}
		out, err := enc.NewDecoder().Bytes(b)
		if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
			continue
		}
		return string(out), r.Charset, true
	}
	return "", "", false
}
