package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/vhalctl/internal/protocol"
	"github.com/danmuck/vhalctl/internal/protocol/value"
)

type valueFormat string

const (
	formatText valueFormat = "text"
	formatHex  valueFormat = "hex"
	formatJSON valueFormat = "json"
)

// parseInteger accepts decimal or 0x-prefixed hex, optionally signed.
func parseInteger(s string, bits int) (int64, error) {
	raw := strings.TrimSpace(s)
	neg := false
	switch {
	case strings.HasPrefix(raw, "-"):
		neg = true
		raw = raw[1:]
	case strings.HasPrefix(raw, "+"):
		raw = raw[1:]
	}
	base := 10
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		base = 16
		raw = raw[2:]
	}
	if neg {
		raw = "-" + raw
	}
	return strconv.ParseInt(raw, base, bits)
}

func parseProp(s string) (uint32, error) {
	n, err := parseInteger(s, 64)
	if err != nil || n < 0 || n > 0xffffffff {
		return 0, fmt.Errorf("invalid property id %q", s)
	}
	return uint32(n), nil
}

func parseArea(s string) (int32, error) {
	n, err := parseInteger(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid area id %q", s)
	}
	// Area masks such as 0xffffffff are written unsigned.
	if n > 0x7fffffff && n <= 0xffffffff {
		n = int64(int32(uint32(n)))
	}
	if n < -1<<31 || n > 1<<31-1 {
		return 0, fmt.Errorf("invalid area id %q", s)
	}
	return int32(n), nil
}

type mixedJSON struct {
	String *string   `json:"string"`
	Bytes  string    `json:"bytes"`
	Int32s []int32   `json:"int32s"`
	Int64s []int64   `json:"int64s"`
	Floats []float32 `json:"floats"`
}

// parseRaw turns a command-line argument into a raw value for the property
// type t. Text on an INT64_VEC property stays a string so it gets packed.
func parseRaw(t protocol.ValueType, s string, format valueFormat) (any, error) {
	switch format {
	case formatHex:
		b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid hex value: %w", err)
		}
		return b, nil
	case formatJSON:
		return parseJSON(t, s)
	case formatText, "":
		return parseText(t, s)
	}
	return nil, fmt.Errorf("unknown value format %q", format)
}

func parseText(t protocol.ValueType, s string) (any, error) {
	switch t {
	case protocol.TypeString, protocol.TypeInt64Vec:
		return s, nil
	case protocol.TypeBytes:
		return []byte(s), nil
	case protocol.TypeBoolean:
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, nil
		}
		n, err := parseInteger(s, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q", s)
		}
		return int32(n), nil
	case protocol.TypeInt32:
		n, err := parseInteger(s, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid int32 %q: %w", s, err)
		}
		return int32(n), nil
	case protocol.TypeInt64:
		n, err := parseInteger(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid int64 %q: %w", s, err)
		}
		return n, nil
	case protocol.TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q: %w", s, err)
		}
		return float32(f), nil
	case protocol.TypeInt32Vec:
		out := []int32{}
		for _, field := range splitList(s) {
			n, err := parseInteger(field, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid int32 element %q: %w", field, err)
			}
			out = append(out, int32(n))
		}
		return out, nil
	case protocol.TypeFloatVec:
		out := []float32{}
		for _, field := range splitList(s) {
			f, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid float element %q: %w", field, err)
			}
			out = append(out, float32(f))
		}
		return out, nil
	case protocol.TypeMixed:
		return nil, fmt.Errorf("%s values need --json", t)
	}
	return nil, value.UnknownValueTypeError{Type: t}
}

func parseJSON(t protocol.ValueType, s string) (any, error) {
	var target any
	switch t {
	case protocol.TypeString:
		target = new(string)
	case protocol.TypeBoolean:
		target = new(bool)
	case protocol.TypeInt32:
		target = new(int32)
	case protocol.TypeInt64:
		target = new(int64)
	case protocol.TypeFloat:
		target = new(float32)
	case protocol.TypeInt32Vec:
		target = new([]int32)
	case protocol.TypeInt64Vec:
		target = new([]int64)
	case protocol.TypeFloatVec:
		target = new([]float32)
	case protocol.TypeMixed:
		var m mixedJSON
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			return nil, fmt.Errorf("invalid json value: %w", err)
		}
		b, err := hex.DecodeString(m.Bytes)
		if err != nil {
			return nil, fmt.Errorf("invalid mixed bytes: %w", err)
		}
		return value.Mixed{String: m.String, Bytes: b, Int32s: m.Int32s, Int64s: m.Int64s, Floats: m.Floats}, nil
	case protocol.TypeBytes:
		return nil, fmt.Errorf("%s values take --hex or text", t)
	default:
		return nil, value.UnknownValueTypeError{Type: t}
	}
	if err := json.Unmarshal([]byte(s), target); err != nil {
		return nil, fmt.Errorf("invalid json value: %w", err)
	}
	switch v := target.(type) {
	case *string:
		return *v, nil
	case *bool:
		return *v, nil
	case *int32:
		return *v, nil
	case *int64:
		return *v, nil
	case *float32:
		return *v, nil
	case *[]int32:
		return *v, nil
	case *[]int64:
		return *v, nil
	case *[]float32:
		return *v, nil
	}
	return nil, value.UnknownValueTypeError{Type: t}
}

func splitList(s string) []string {
	var out []string
	for _, field := range strings.Split(s, ",") {
		if v := strings.TrimSpace(field); v != "" {
			out = append(out, v)
		}
	}
	return out
}
