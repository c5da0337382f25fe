package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		name  string
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{name: "render", cmd: NewRenderCommand(), use: "render", flags: []string{"sort", "filter", "hide"}},
		{name: "browse", cmd: NewBrowseCommand(), use: "browse", flags: []string{"sort", "filter", "hide"}},
		{name: "serve", cmd: NewServeCommand(), use: "serve", flags: []string{"port", "no-open", "no-watch"}},
		{name: "shell", cmd: NewShellCommand(), use: "shell"},
		{name: "init", cmd: NewInitCommand(), use: "init [directory]", flags: []string{"force"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Long, "Long should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestRenderCommand_ShortFlags(t *testing.T) {
	cmd := NewRenderCommand()
	assert.Equal(t, "s", cmd.Flags().Lookup("sort").Shorthand)
	assert.Equal(t, "f", cmd.Flags().Lookup("filter").Shorthand)
}
