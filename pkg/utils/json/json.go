// Package json is the JSON codec of the SBS binaries. It uses sonic where sonic
// has a JIT and encoding/json elsewhere; both produce the same output.
package json

import (
	stdjson "encoding/json"
	"io"
	"runtime"

	"github.com/bytedance/sonic"
)

// Decoder reads a stream of JSON values.
type Decoder interface {
	Decode(v any) error
}

type codec struct {
	name          string
	marshal       func(any) ([]byte, error)
	marshalIndent func(any, string, string) ([]byte, error)
	unmarshal     func([]byte, any) error
	newDecoder    func(io.Reader) Decoder
}

var active = pick(runtime.GOARCH)

func pick(arch string) codec {
	switch arch {
	case "amd64", "arm64":
		api := sonic.ConfigStd
		return codec{
			name:          "sonic",
			marshal:       api.Marshal,
			marshalIndent: api.MarshalIndent,
			unmarshal:     api.Unmarshal,
			newDecoder:    func(r io.Reader) Decoder { return api.NewDecoder(r) },
		}
	default:
		return codec{
			name:          "encoding/json",
			marshal:       stdjson.Marshal,
			marshalIndent: stdjson.MarshalIndent,
			unmarshal:     stdjson.Unmarshal,
			newDecoder:    func(r io.Reader) Decoder { return stdjson.NewDecoder(r) },
		}
	}
}

func Marshal(v any) ([]byte, error) { return active.marshal(v) }

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return active.marshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v any) error { return active.unmarshal(data, v) }

func NewDecoder(r io.Reader) Decoder { return active.newDecoder(r) }

// Encode writes v to w as indented JSON followed by a newline.
func Encode(w io.Writer, v any) error {
	b, err := MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// Backend names the codec in use, "sonic" or "encoding/json".
func Backend() string {
	return active.name
}
