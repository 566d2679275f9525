package api

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/tweetlite/tweetlite/internal/oauth1"
)

// Params are request parameters. Supported value types are string, []string,
// the integer kinds, bool and fmt.Stringer. A []string is sent as a single
// comma-joined value, which is how the API takes list parameters such as
// users/lookup?user_id=1,2,3.
type Params map[string]any

// Values flattens p into url.Values with exactly one value per key.
// Nil values and empty lists are skipped.
func (p Params) Values() (url.Values, error) {
	if len(p) == 0 {
		return nil, nil
	}
	out := make(url.Values, len(p))
	for key, raw := range p {
		if raw == nil || emptyList(raw) {
			continue
		}
		value, err := paramString(raw)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", key, err)
		}
		out.Set(key, value)
	}
	return out, nil
}

func emptyList(v any) bool {
	switch t := v.(type) {
	case []string:
		return len(t) == 0
	case []int64:
		return len(t) == 0
	}
	return false
}

func paramString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []string:
		return strings.Join(t, ","), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case int32:
		return strconv.FormatInt(int64(t), 10), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case []int64:
		parts := make([]string, len(t))
		for i, n := range t {
			parts[i] = strconv.FormatInt(n, 10)
		}
		return strings.Join(parts, ","), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// encodeValues renders values with RFC 3986 escaping (space is %20, never
// '+') and keys in sorted order.
func encodeValues(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range values[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(oauth1.Encode(k))
			b.WriteByte('=')
			b.WriteString(oauth1.Encode(v))
		}
	}
	return b.String()
}
