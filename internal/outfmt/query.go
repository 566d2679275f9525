package outfmt

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/tweetlite/tweetlite/internal/filter"
)

// ApplyQuery round-trips v through JSON and applies query. Typed values
// (structs, envelopes) become plain JSON trees first so jq sees the wire
// field names.
func ApplyQuery(v any, query string) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if query == "" {
		var out any
		if err := unmarshalNumbers(data, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return filter.ApplyToJSON(data, query)
}

// WriteJSONFiltered writes v with an optional jq filter applied.
func WriteJSONFiltered(w io.Writer, v any, query string, compact bool) error {
	if query == "" {
		return WriteJSONMaybeCompact(w, v, compact)
	}
	result, err := ApplyQuery(v, query)
	if err != nil {
		return err
	}
	return WriteJSONMaybeCompact(w, result, compact)
}

func unmarshalNumbers(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(dst)
}
