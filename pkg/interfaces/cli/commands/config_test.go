package commands

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want Config
	}{
		{
			name: "no arguments asks for help",
			args: nil,
			want: Config{Help: true},
		},
		{
			name: "explode",
			args: []string{"explode", "-date", "2025-01-07", "-format", "json"},
			want: Config{Command: "explode", Date: "2025-01-07", Format: "json"},
		},
		{
			name: "upload with encoding",
			args: []string{"upload", "-file", "soh.csv", "-encoding", "windows-1252", "-week", "2025-01-06"},
			want: Config{Command: "upload", File: "soh.csv", Encoding: "windows-1252", Week: "2025-01-06", Format: "text"},
		},
		{
			name: "requirements",
			args: []string{"requirements", "-item", "WIP-BASE", "-kg", "150", "-verbose"},
			want: Config{Command: "requirements", Item: "WIP-BASE", Kg: "150", Format: "text", Verbose: true},
		},
		{
			name: "help flag",
			args: []string{"hierarchy", "-h"},
			want: Config{Command: "hierarchy", Format: "text", Help: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseArgs(tc.args, io.Discard)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseArgs_Errors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"forecast"}},
		{"flag of another command", []string{"explode", "-file", "soh.csv"}},
		{"stray argument", []string{"validate", "extra"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseArgs(tc.args, io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestConfig_ValidateInputs(t *testing.T) {
	testCases := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"explode needs a date", Config{Command: "explode"}, "-date is required for explode"},
		{"requirements needs kg", Config{Command: "requirements", Item: "WIP-BASE"}, "-kg is required for requirements"},
		{"report-usage needs to", Config{Command: "report-usage", From: "2025-01-06"}, "-to is required for report-usage"},
		{"complete upload", Config{Command: "upload", File: "soh.csv"}, ""},
		{"migrate takes no flags", Config{Command: "migrate"}, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.validateInputs()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.wantErr, err.Error())
		})
	}
}
