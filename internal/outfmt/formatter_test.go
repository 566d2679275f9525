package outfmt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/tweetlite/tweetlite/internal/api"
)

var sampleEnvelope = &api.ErrorEnvelope{Errors: []api.ErrorItem{
	{Code: 32, Message: "Could not authenticate you."},
}}

func TestFormatter_Output_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(WithMode(context.Background(), JSON), &buf, &buf)

	if err := f.Output(map[string]string{"screen_name": "nodejs_lite"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"screen_name": "nodejs_lite"`) {
		t.Errorf("output should contain indented JSON, got %s", buf.String())
	}
}

func TestFormatter_Output_JSONWithQuery(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithQuery(WithMode(context.Background(), JSON), ".screen_name")
	f := NewFormatter(ctx, &buf, &buf)

	if err := f.Output(map[string]string{"screen_name": "nodejs_lite"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "\"nodejs_lite\"\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestFormatter_Output_JSONL(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(WithMode(context.Background(), JSONL), &buf, &buf)

	if err := f.Output([]map[string]int{{"id": 1}, {"id": 2}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "{\"id\":1}\n{\"id\":2}\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestFormatter_Output_Text(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(WithMode(context.Background(), Text), &buf, &buf)

	if err := f.Output(map[string]string{"name": "test"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("text mode Output should not write, got %q", buf.String())
	}
}

func TestFormatter_Document_Text(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(context.Background(), &buf, &buf)

	if err := f.Document(map[string]any{"name": "Dan Dascalescu"}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\n  \"name\": \"Dan Dascalescu\"\n}\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestFormatter_Envelope(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(context.Background(), &buf, &buf)
	if err := f.Envelope(sampleEnvelope); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "error 32: Could not authenticate you.\n" {
		t.Errorf("text envelope = %q", buf.String())
	}

	buf.Reset()
	f = NewFormatter(WithCompact(WithMode(context.Background(), JSON), true), &buf, &buf)
	if err := f.Envelope(sampleEnvelope); err != nil {
		t.Fatal(err)
	}
	if buf.String() != `{"errors":[{"code":32,"message":"Could not authenticate you."}]}`+"\n" {
		t.Errorf("json envelope = %q", buf.String())
	}

	buf.Reset()
	if err := f.Envelope(nil); err != nil || buf.Len() != 0 {
		t.Errorf("nil envelope should write nothing")
	}
}

func TestFormatter_Table(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(context.Background(), &buf, &buf)

	if !f.StartTable([]string{"ID", "SCREEN_NAME"}) {
		t.Fatal("text mode should start a table")
	}
	f.Row("15008676", "dandv")
	_ = f.EndTable()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[1], "dandv") {
		t.Errorf("unexpected table: %q", buf.String())
	}

	jf := NewFormatter(WithMode(context.Background(), JSON), &buf, &buf)
	if jf.StartTable([]string{"ID"}) {
		t.Error("JSON mode should not start a table")
	}
}

func TestFormatter_Empty(t *testing.T) {
	var out, errOut bytes.Buffer
	f := NewFormatter(context.Background(), &out, &errOut)

	f.Empty("No results found")

	if !strings.Contains(errOut.String(), "No results found") || out.Len() != 0 {
		t.Error("empty message should be written to stderr only")
	}
}
