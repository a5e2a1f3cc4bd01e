package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantErr        bool
		wantInOutput   []string
		wantExactMatch string
	}{
		{
			name:    "help flag shows usage",
			args:    []string{"--help"},
			wantErr: false,
			wantInOutput: []string{
				"dailyAGI - a wallet-aware daily assistant",
				"Usage:",
				"dailyagi [flags]",
				"Available Commands:",
				"--version",
				"--wallet",
			},
		},
		{
			name:           "version flag shows version",
			args:           []string{"--version"},
			wantErr:        false,
			wantExactMatch: "dailyagi version 0.1.0\n",
		},
		{
			name:           "short version flag shows version",
			args:           []string{"-v"},
			wantErr:        false,
			wantExactMatch: "dailyagi version 0.1.0\n",
		},
		{
			name:    "no arguments shows help",
			args:    []string{},
			wantErr: false,
			wantInOutput: []string{
				"Available Commands:",
				"ask",
				"serve-demo",
			},
		},
		{
			name:    "invalid flag shows error",
			args:    []string{"--invalid"},
			wantErr: true,
			wantInOutput: []string{
				"unknown flag: --invalid",
			},
		},
		{
			name:    "ask without a message",
			args:    []string{"ask", "  "},
			wantErr: true,
			wantInOutput: []string{
				"Error: requires a message (use quotes for multi-word messages)",
			},
		},
		{
			name:    "reminders rm requires an id",
			args:    []string{"reminders", "rm"},
			wantErr: true,
			wantInOutput: []string{
				"accepts 1 arg(s), received 0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rootCmd := NewRootCommand()
			buf := new(bytes.Buffer)
			rootCmd.SetOut(buf)
			rootCmd.SetErr(buf)
			rootCmd.SetArgs(tt.args)

			err := execute(rootCmd)
			if (err != nil) != tt.wantErr {
				t.Errorf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}

			output := buf.String()

			if tt.wantExactMatch != "" {
				if output != tt.wantExactMatch {
					t.Errorf("Execute() output = %q, want %q", output, tt.wantExactMatch)
				}
			} else {
				for _, want := range tt.wantInOutput {
					if !strings.Contains(output, want) {
						t.Errorf("Execute() output missing %q\nGot: %s", want, output)
					}
				}
			}
		})
	}
}
