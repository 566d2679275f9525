package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tweetlite/tweetlite/internal/api"
	"github.com/tweetlite/tweetlite/internal/dryrun"
	"github.com/tweetlite/tweetlite/internal/iocontext"
	"github.com/tweetlite/tweetlite/internal/outfmt"
)

// newFormatter returns a formatter bound to the command's streams and
// output settings.
func newFormatter(cmd *cobra.Command) *outfmt.Formatter {
	s := iocontext.From(cmd.Context())
	return outfmt.NewFormatter(cmd.Context(), s.Out, s.ErrOut)
}

// printJSON outputs data as JSON with the --jq filter applied
func printJSON(cmd *cobra.Command, v any) error {
	return newFormatter(cmd).Output(v)
}

// isJSON checks if the command context wants JSON output
func isJSON(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmd.Context())
}

// printIfNotQuiet prints to stdout only if not in quiet mode
func printIfNotQuiet(cmd *cobra.Command, format string, args ...any) {
	if flags.Quiet {
		return
	}
	_, _ = fmt.Fprintf(iocontext.From(cmd.Context()).Out, format, args...)
}

// previewRequest prints the POST a mutating command would send when
// --dry-run is set, and reports whether it did.
func previewRequest(cmd *cobra.Command, operation, path string, body any, params api.Params) (bool, error) {
	if !dryrun.IsEnabled(cmd.Context()) {
		return false, nil
	}
	client, err := newClientFactory().offlineClient()
	if err != nil {
		return true, err
	}
	req, err := client.Prepare(http.MethodPost, path, body, params)
	if err != nil {
		return true, err
	}
	preview := dryrun.New(operation, req)
	if isJSON(cmd) {
		return true, printJSON(cmd, preview)
	}
	preview.Write(iocontext.From(cmd.Context()).Out)
	return true, nil
}

// aliasBridgeValue wraps a pflag.Value so that Set() on the alias also
// marks the canonical flag as Changed.
type aliasBridgeValue struct {
	pflag.Value
	canonical *pflag.Flag
}

func (v *aliasBridgeValue) Set(s string) error {
	if err := v.Value.Set(s); err != nil {
		return err
	}
	v.canonical.Changed = true
	return nil
}

// aliasBridgeSliceValue also forwards pflag.SliceValue for repeatable flags.
type aliasBridgeSliceValue struct {
	aliasBridgeValue
	slice pflag.SliceValue
}

func (v *aliasBridgeSliceValue) Append(s string) error     { return v.slice.Append(s) }
func (v *aliasBridgeSliceValue) Replace(ss []string) error { return v.slice.Replace(ss) }
func (v *aliasBridgeSliceValue) GetSlice() []string        { return v.slice.GetSlice() }

// flagAlias registers a hidden alias for an existing flag. Both names share
// one Value, and the alias is annotated so flagOrAliasChanged can find it.
func flagAlias(fs *pflag.FlagSet, name, alias string) {
	f := fs.Lookup(name)
	if f == nil {
		panic(fmt.Sprintf("flagAlias: flag %q not found", name))
	}
	a := *f
	a.Name = alias
	a.Shorthand = ""
	a.Usage = ""
	a.Hidden = true
	bridge := &aliasBridgeValue{Value: f.Value, canonical: f}
	if sv, ok := f.Value.(pflag.SliceValue); ok {
		a.Value = &aliasBridgeSliceValue{aliasBridgeValue: *bridge, slice: sv}
	} else {
		a.Value = bridge
	}
	ann := map[string][]string{"alias-of": {name}}
	for k, v := range f.Annotations {
		if k == cobra.BashCompOneRequiredFlag {
			continue
		}
		ann[k] = v
	}
	a.Annotations = ann
	fs.AddFlag(&a)
}

// flagOrAliasChanged returns true if the named flag or any of its
// hidden aliases was explicitly set by the user.
func flagOrAliasChanged(cmd *cobra.Command, name string) bool {
	if cmd.Flags().Changed(name) || cmd.InheritedFlags().Changed(name) {
		return true
	}
	aliasChanged := func(fs *pflag.FlagSet) bool {
		found := false
		fs.VisitAll(func(f *pflag.Flag) {
			if ann, ok := f.Annotations["alias-of"]; ok && len(ann) > 0 && ann[0] == name && fs.Changed(f.Name) {
				found = true
			}
		})
		return found
	}
	return aliasChanged(cmd.Flags()) || aliasChanged(cmd.InheritedFlags())
}

// parseKeyValues turns repeated key=value flags into api.Params. Values are
// kept verbatim; a key given more than once becomes a list.
func parseKeyValues(pairs []string) (api.Params, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	lists := make(map[string][]string)
	var order []string
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: must be key=value", pair)
		}
		if _, seen := lists[key]; !seen {
			order = append(order, key)
		}
		lists[key] = append(lists[key], value)
	}
	params := make(api.Params, len(order))
	for _, key := range order {
		if values := lists[key]; len(values) == 1 {
			params[key] = values[0]
		} else {
			params[key] = values
		}
	}
	return params, nil
}

// errAlreadyHandled is a sentinel error indicating the error was already printed to stderr.
// Commands using RunE return this to signal Cobra that an error occurred (for exit code)
// without Cobra printing it again (since SilenceErrors is true on root command).
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() []error {
	return []error{errAlreadyHandled, e.err}
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

// RunE wraps a command function with enhanced error handling
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		var handled *handledError
		if errors.As(err, &handled) {
			return err
		}
		s := iocontext.From(cmd.Context())
		if env, ok := api.AsEnvelope(err); ok && isJSON(cmd) {
			_ = outfmt.WriteJSON(s.ErrOut, env)
		} else {
			_, _ = fmt.Fprint(s.ErrOut, HandleError(err))
		}
		return &handledError{err: err, exitCode: ExitCode(err)}
	}
}
