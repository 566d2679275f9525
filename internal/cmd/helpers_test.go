package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tweetlite/tweetlite/internal/api"
)

func TestParseKeyValues(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    api.Params
		wantErr bool
	}{
		{name: "none", pairs: nil, want: nil},
		{name: "single", pairs: []string{"screen_name=dandv"}, want: api.Params{"screen_name": "dandv"}},
		{name: "empty value", pairs: []string{"cursor="}, want: api.Params{"cursor": ""}},
		{name: "value with equals", pairs: []string{"q=a=b"}, want: api.Params{"q": "a=b"}},
		{
			name:  "repeated key",
			pairs: []string{"user_id=1", "user_id=2"},
			want:  api.Params{"user_id": []string{"1", "2"}},
		},
		{
			name:  "commas kept verbatim",
			pairs: []string{"status=Hello, world", "q=a,,b", "user_id=1,2"},
			want:  api.Params{"status": "Hello, world", "q": "a,,b", "user_id": "1,2"},
		},
		{name: "missing equals", pairs: []string{"count"}, wantErr: true},
		{name: "empty key", pairs: []string{"=5"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseKeyValues(tt.pairs)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "must be key=value")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlagAlias(t *testing.T) {
	cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	var name string
	var ids []string
	cmd.Flags().StringVar(&name, "screen-name", "", "")
	cmd.Flags().StringSliceVar(&ids, "user-id", nil, "")
	flagAlias(cmd.Flags(), "screen-name", "sn")
	flagAlias(cmd.Flags(), "user-id", "uid")

	require.NoError(t, cmd.ParseFlags([]string{"--sn", "dandv", "--uid", "1,2", "--user-id", "3"}))
	assert.Equal(t, "dandv", name)
	assert.Equal(t, []string{"1", "2", "3"}, ids)
	assert.True(t, cmd.Flags().Changed("screen-name"))
	assert.True(t, flagOrAliasChanged(cmd, "screen-name"))

	alias := cmd.Flags().Lookup("sn")
	require.NotNil(t, alias)
	assert.True(t, alias.Hidden)
	assert.Equal(t, []string{"screen-name"}, alias.Annotations["alias-of"])
	_, isSlice := cmd.Flags().Lookup("uid").Value.(pflag.SliceValue)
	assert.True(t, isSlice)
}

func TestFlagAlias_UnknownPanics(t *testing.T) {
	fs := pflag.NewFlagSet("x", pflag.ContinueOnError)
	assert.Panics(t, func() { flagAlias(fs, "missing", "m") })
}
