// Package iocontext carries a command's standard streams in its context so
// tests can swap them without touching os.Stdout.
package iocontext

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
)

// Streams are the input and output streams of one command run.
type Streams struct {
	Out    io.Writer
	ErrOut io.Writer
	In     io.Reader
}

// Std returns the process streams as they are at call time.
func Std() *Streams {
	return &Streams{Out: os.Stdout, ErrOut: os.Stderr, In: os.Stdin}
}

// Muted returns a copy with stderr discarded, and stdout too when
// stdout is set.
func (s *Streams) Muted(stdout bool) *Streams {
	c := *s
	c.ErrOut = io.Discard
	if stdout {
		c.Out = io.Discard
	}
	return &c
}

// ReadArg returns value, or the whole of In when value is "-".
func (s *Streams) ReadArg(value string) (string, error) {
	if value != "-" {
		return value, nil
	}
	if s.In == nil {
		return "", errors.New("no input stream")
	}
	data, err := io.ReadAll(s.In)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

type streamsKey struct{}

// With stores s in ctx.
func With(ctx context.Context, s *Streams) context.Context {
	return context.WithValue(ctx, streamsKey{}, s)
}

// From returns the streams stored in ctx, or the process streams.
func From(ctx context.Context) *Streams {
	if s, ok := ctx.Value(streamsKey{}).(*Streams); ok && s != nil {
		return s
	}
	return Std()
}
