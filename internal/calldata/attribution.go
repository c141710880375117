package calldata

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ERC-8021 suffix layout, read backwards from the end of the call data:
//
//	codes (ascii, comma separated) | codes length (1 byte) | schema id (1 byte) | marker (16 bytes)
const (
	schemaCanonical byte = 0x00
	markerLength         = 16
	maxCodesLength       = 0xff
)

// AttributionMarker terminates every ERC-8021 data suffix.
var AttributionMarker = common.Hex2Bytes("80218021802180218021802180218021")

var (
	ErrNoBuilderCodes         = errors.New("at least one builder code is required")
	ErrInvalidBuilderCode     = errors.New("invalid builder code")
	ErrMissingAttribution     = errors.New("no attribution suffix found")
	ErrUnsupportedAttribution = errors.New("unsupported attribution schema")
)

// AttributionSuffix builds the canonical-schema ERC-8021 data suffix for
// the given builder codes.
func AttributionSuffix(codes ...string) ([]byte, error) {
	if len(codes) == 0 {
		return nil, ErrNoBuilderCodes
	}
	for _, code := range codes {
		if err := checkCode(code); err != nil {
			return nil, err
		}
	}

	joined := []byte(strings.Join(codes, ","))
	if len(joined) > maxCodesLength {
		return nil, fmt.Errorf("%w: codes exceed %d bytes", ErrInvalidBuilderCode, maxCodesLength)
	}

	suffix := make([]byte, 0, len(joined)+2+markerLength)
	suffix = append(suffix, joined...)
	suffix = append(suffix, byte(len(joined)), schemaCanonical)
	suffix = append(suffix, AttributionMarker...)
	return suffix, nil
}

// ParseAttribution extracts builder codes from data that ends with an
// ERC-8021 suffix.
func ParseAttribution(data []byte) ([]string, error) {
	if len(data) < markerLength+2 || !bytes.HasSuffix(data, AttributionMarker) {
		return nil, ErrMissingAttribution
	}

	rest := data[:len(data)-markerLength]
	if schema := rest[len(rest)-1]; schema != schemaCanonical {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedAttribution, schema)
	}
	rest = rest[:len(rest)-1]

	n := int(rest[len(rest)-1])
	rest = rest[:len(rest)-1]
	if n == 0 || n > len(rest) {
		return nil, ErrMissingAttribution
	}

	return strings.Split(string(rest[len(rest)-n:]), ","), nil
}

func checkCode(code string) error {
	if code == "" {
		return fmt.Errorf("%w: empty code", ErrInvalidBuilderCode)
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c == ',' || c < 0x20 || c > 0x7e {
			return fmt.Errorf("%w: %q", ErrInvalidBuilderCode, code)
		}
	}
	return nil
}
