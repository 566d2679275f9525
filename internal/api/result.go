package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Result is the outcome of a call that completed at the HTTP level.
// Exactly one of Value and Errors is meaningful: Errors is non-nil when the
// API rejected the call, otherwise Value holds the decoded JSON payload.
// JSON numbers are kept as json.Number so 64-bit ids are not rounded.
type Result struct {
	StatusCode int
	Value      any
	Errors     *ErrorEnvelope
	RateLimit  *RateLimitInfo
}

// OK reports whether the call succeeded.
func (r *Result) OK() bool {
	return r != nil && r.Errors == nil
}

// Payload returns what the API said: the success value or the envelope.
func (r *Result) Payload() any {
	if r == nil {
		return nil
	}
	if r.Errors != nil {
		return r.Errors
	}
	return r.Value
}

// Decode maps the success value onto dst using its json tags. A rejected
// call returns the envelope as the error.
func (r *Result) Decode(dst any) error {
	if r == nil {
		return errors.New("nil result")
	}
	if r.Errors != nil {
		return r.Errors
	}
	return decodeValue(r.Value, dst)
}

// CacheBody serializes a successful payload for a response cache.
func (r *Result) CacheBody() ([]byte, error) {
	if !r.OK() {
		return nil, errors.New("only successful results are cached")
	}
	return json.Marshal(r.Value)
}

// ResultFromCache rebuilds a successful Result from CacheBody output.
func ResultFromCache(body []byte) (*Result, error) {
	value, err := decodeJSON(body)
	if err != nil {
		return nil, err
	}
	return &Result{StatusCode: http.StatusOK, Value: value}, nil
}

func decodeValue(src, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           dst,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(src); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// ErrorItem is one entry of an error envelope.
type ErrorItem struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ErrorEnvelope is the uniform shape of every API-level failure:
// {"errors":[{"code":32,"message":"Could not authenticate you."}]}.
type ErrorEnvelope struct {
	Errors []ErrorItem `json:"errors"`
}

func (e *ErrorEnvelope) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return "twitter api error"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		if item.Code != 0 {
			parts = append(parts, fmt.Sprintf("%s (code %d)", item.Message, item.Code))
		} else {
			parts = append(parts, item.Message)
		}
	}
	return "twitter api error: " + strings.Join(parts, "; ")
}

// FirstCode returns the code of the first error, or 0.
func (e *ErrorEnvelope) FirstCode() int {
	if e == nil || len(e.Errors) == 0 {
		return 0
	}
	return e.Errors[0].Code
}

// HasCode reports whether any entry carries code.
func (e *ErrorEnvelope) HasCode(code int) bool {
	if e == nil {
		return false
	}
	for _, item := range e.Errors {
		if item.Code == code {
			return true
		}
	}
	return false
}

func decodeResponse(status int, body []byte) (*Result, error) {
	if status >= 200 && status < 300 {
		value, err := decodeJSON(body)
		if err != nil {
			return nil, fmt.Errorf("unexpected API response format (JSON decode failed): %w", err)
		}
		return &Result{StatusCode: status, Value: value}, nil
	}

	env, err := decodeErrorBody(body)
	if err != nil {
		return nil, fmt.Errorf("status %d: %w", status, err)
	}
	return &Result{StatusCode: status, Errors: env}, nil
}

func decodeJSON(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeErrorBody tries JSON first, then url-encoded form text.
func decodeErrorBody(body []byte) (*ErrorEnvelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty error response")
	}

	if json.Valid(trimmed) {
		value, err := decodeJSON(trimmed)
		if err != nil {
			return nil, err
		}
		if env := envelopeFromJSON(value); env != nil {
			return env, nil
		}
		return nil, errors.New("unrecognized JSON error payload")
	}

	form, err := url.ParseQuery(string(trimmed))
	if err != nil {
		return nil, fmt.Errorf("error payload is neither JSON nor form data: %w", err)
	}
	if env := envelopeFromForm(form); env != nil {
		return env, nil
	}
	return nil, errors.New("unrecognized error payload")
}

func envelopeFromJSON(value any) *ErrorEnvelope {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	switch errs := obj["errors"].(type) {
	case []any:
		var items []ErrorItem
		if err := decodeValue(errs, &items); err == nil && len(items) > 0 {
			for i := range items {
				if items[i].Message == "" {
					items[i].Message = detailMessage(errs[i])
				}
			}
			return &ErrorEnvelope{Errors: items}
		}
	case string:
		if errs != "" {
			return &ErrorEnvelope{Errors: []ErrorItem{{Message: errs}}}
		}
	}

	if msg, ok := obj["error"].(string); ok && msg != "" {
		return &ErrorEnvelope{Errors: []ErrorItem{{Message: msg}}}
	}
	if msg := detailMessage(obj); msg != "" {
		return &ErrorEnvelope{Errors: []ErrorItem{{Message: msg}}}
	}
	return nil
}

// detailMessage reads the "detail"/"title" fields used by problem-style
// error objects.
func detailMessage(v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"detail", "title"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func envelopeFromForm(form url.Values) *ErrorEnvelope {
	message := form.Get("message")
	if message == "" {
		message = form.Get("error")
	}
	rawCode := form.Get("code")
	if message == "" && rawCode == "" {
		return nil
	}
	code, _ := strconv.Atoi(strings.TrimSpace(rawCode))
	return &ErrorEnvelope{Errors: []ErrorItem{{Code: code, Message: message}}}
}
