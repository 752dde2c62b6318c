package ansi

import (
	"fmt"
	"strconv"
	"strings"
)

// RequestSpec describes a well-known terminal query.
type RequestSpec struct {
	Name       string
	Payload    []byte
	Terminator string
}

// Well-known queries.
var (
	// RequestDeviceAttributes asks for primary device attributes (DA1).
	// Reply: ESC [ ? Ps ; ... c
	RequestDeviceAttributes = RequestSpec{Name: "da", Payload: []byte("\x1b[c"), Terminator: "c"}

	// RequestSecondaryDeviceAttributes asks for secondary device
	// attributes (DA2). Reply: ESC [ > Pp ; Pv ; Pc c
	RequestSecondaryDeviceAttributes = RequestSpec{Name: "da2", Payload: []byte("\x1b[>0c"), Terminator: "c"}

	// RequestCursorPosition asks for the cursor position (CPR).
	// Reply: ESC [ row ; col R
	RequestCursorPosition = RequestSpec{Name: "cursor", Payload: []byte("\x1b[6n"), Terminator: "R"}

	// RequestTerminalSizeChars asks for the text area size in characters.
	// Reply: ESC [ 8 ; rows ; cols t
	RequestTerminalSizeChars = RequestSpec{Name: "size", Payload: []byte("\x1b[18t"), Terminator: "t"}
)

// WellKnown lists the well-known queries by name.
var WellKnown = map[string]RequestSpec{
	RequestDeviceAttributes.Name:          RequestDeviceAttributes,
	RequestSecondaryDeviceAttributes.Name: RequestSecondaryDeviceAttributes,
	RequestCursorPosition.Name:            RequestCursorPosition,
	RequestTerminalSizeChars.Name:         RequestTerminalSizeChars,
}

// NewRequest creates a request for the query. send should transmit
// s.Payload.
func (s RequestSpec) NewRequest(onResponse func(string), send func() error) *Request {
	r := NewRequest(s.Terminator, onResponse, send)
	r.Payload = s.Payload
	return r
}

// DeviceAttributes is a decoded DA1 or DA2 reply.
type DeviceAttributes struct {
	// Secondary is set for DA2 replies.
	Secondary bool
	Params    []int
}

// ParseDeviceAttributes decodes "ESC [ ? 62 ; 22 c" or "ESC [ > 1 ; 95 ; 0 c".
func ParseDeviceAttributes(resp string) (DeviceAttributes, error) {
	body, err := csiBody(resp, 'c')
	if err != nil {
		return DeviceAttributes{}, err
	}
	var da DeviceAttributes
	switch {
	case strings.HasPrefix(body, "?"):
		body = body[1:]
	case strings.HasPrefix(body, ">"):
		body = body[1:]
		da.Secondary = true
	default:
		return DeviceAttributes{}, fmt.Errorf("%w: %q lacks ? or > marker", ErrMalformedResponse, resp)
	}
	if da.Params, err = parseParams(resp, body); err != nil {
		return DeviceAttributes{}, err
	}
	return da, nil
}

// ParseCursorPosition decodes "ESC [ row ; col R". Positions are 1-based.
func ParseCursorPosition(resp string) (row, col int, err error) {
	params, err := fixedParams(resp, 'R', 2)
	if err != nil {
		return 0, 0, err
	}
	return params[0], params[1], nil
}

// ParseTerminalSizeChars decodes "ESC [ 8 ; rows ; cols t".
func ParseTerminalSizeChars(resp string) (rows, cols int, err error) {
	params, err := fixedParams(resp, 't', 3)
	if err != nil {
		return 0, 0, err
	}
	if params[0] != 8 {
		return 0, 0, fmt.Errorf("%w: %q is not a size report", ErrMalformedResponse, resp)
	}
	return params[1], params[2], nil
}

func fixedParams(resp string, final byte, n int) ([]int, error) {
	body, err := csiBody(resp, final)
	if err != nil {
		return nil, err
	}
	params, err := parseParams(resp, body)
	if err != nil {
		return nil, err
	}
	if len(params) != n {
		return nil, fmt.Errorf("%w: %q has %d parameters, want %d", ErrMalformedResponse, resp, len(params), n)
	}
	return params, nil
}

// csiBody strips the CSI introducer and the final byte.
func csiBody(resp string, final byte) (string, error) {
	if !strings.HasPrefix(resp, "\x1b[") || len(resp) < 3 || resp[len(resp)-1] != final {
		return "", fmt.Errorf("%w: %q", ErrMalformedResponse, resp)
	}
	return resp[2 : len(resp)-1], nil
}

func parseParams(resp, body string) ([]int, error) {
	if body == "" {
		return nil, nil
	}
	fields := strings.Split(body, ";")
	params := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedResponse, resp, err)
		}
		params[i] = v
	}
	return params, nil
}
