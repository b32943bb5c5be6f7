package tools

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// decode maps loosely-typed tool arguments onto a typed params struct.
// WeaklyTypedInput tolerates the numeric type drift of JSON-decoded args.
func decode(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("building decoder: %w", err)
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("decoding arguments: %w", err)
	}
	return nil
}
