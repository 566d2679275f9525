package outfmt

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/tweetlite/tweetlite/internal/api"
)

// Formatter handles output formatting for commands.
type Formatter struct {
	ctx       context.Context
	out       io.Writer
	errOut    io.Writer
	tabWriter *tabwriter.Writer
}

// NewFormatter creates a Formatter bound to the mode, query and compact
// settings carried by ctx.
func NewFormatter(ctx context.Context, out, errOut io.Writer) *Formatter {
	return &Formatter{
		ctx:       ctx,
		out:       out,
		errOut:    errOut,
		tabWriter: tabwriter.NewWriter(out, 0, 4, 2, ' ', 0),
	}
}

// Output writes data in JSON or JSONL mode and does nothing in text mode,
// where commands render their own tables.
func (f *Formatter) Output(data any) error {
	switch ModeFromContext(f.ctx) {
	case JSON:
		return WriteJSONFiltered(f.out, data, GetQuery(f.ctx), IsCompact(f.ctx))
	case JSONL:
		result, err := ApplyQuery(data, GetQuery(f.ctx))
		if err != nil {
			return err
		}
		return WriteJSONLines(f.out, result)
	}
	return nil
}

// Document writes a payload whose shape is not known in advance. Text mode
// falls back to indented JSON.
func (f *Formatter) Document(data any) error {
	if IsJSON(f.ctx) {
		return f.Output(data)
	}
	return WriteJSONFiltered(f.out, data, GetQuery(f.ctx), false)
}

// Envelope writes an API rejection. Text mode prints one
// "error <code>: <message>" line per entry; JSON modes print the envelope
// as the API sent it.
func (f *Formatter) Envelope(env *api.ErrorEnvelope) error {
	if env == nil {
		return nil
	}
	if IsJSON(f.ctx) {
		return WriteJSONMaybeCompact(f.out, env, IsCompact(f.ctx) || ModeFromContext(f.ctx) == JSONL)
	}
	for _, item := range env.Errors {
		if _, err := fmt.Fprintf(f.out, "error %d: %s\n", item.Code, item.Message); err != nil {
			return err
		}
	}
	return nil
}

// StartTable writes table headers. Returns true if in text mode.
func (f *Formatter) StartTable(headers []string) bool {
	if IsJSON(f.ctx) {
		return false
	}
	f.Row(headers...)
	return true
}

// Row writes a single row to the table.
func (f *Formatter) Row(columns ...string) {
	for i, col := range columns {
		if i > 0 {
			_, _ = fmt.Fprint(f.tabWriter, "\t")
		}
		_, _ = fmt.Fprint(f.tabWriter, col)
	}
	_, _ = fmt.Fprintln(f.tabWriter)
}

// EndTable flushes the table output.
func (f *Formatter) EndTable() error {
	return f.tabWriter.Flush()
}

// Empty writes a message to stderr indicating no results.
func (f *Formatter) Empty(message string) {
	_, _ = fmt.Fprintln(f.errOut, message)
}
