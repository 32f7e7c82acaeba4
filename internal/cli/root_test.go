package cli

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlens/pkg/errors"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()

	want := []string{"analyze", "convert", "merge", "layout", "render", "deps",
		"serve", "watch", "pick", "cache", "config", "version", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestDescribe(t *testing.T) {
	err := errors.New(errors.ErrCodeNoData, "nothing here")
	if got := describe(err); !strings.Contains(got, "NO_DATA") || !strings.Contains(got, "nothing here") {
		t.Errorf("describe(coded) = %q", got)
	}
	if got := describe(stderrors.New("plain")); got != "plain" {
		t.Errorf("describe(plain) = %q", got)
	}
}
