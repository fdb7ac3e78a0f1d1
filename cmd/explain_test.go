package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/josephlewis42/cronsh/core/options"
	"github.com/josephlewis42/cronsh/core/shell"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func TestExplain(t *testing.T) {
	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
	)

	cases := map[string]string{
		"explain_tagged":      `/bin/echo "hello world" #greet !capture-stderr sendto-file bogus`,
		"explain_plain":       `backup.sh --full`,
		"explain_exclusive":   `job #t *sendto-pipe sendif-status`,
		"explain_bare_marker": `job # silent`,
	}

	for tn, raw := range cases {
		t.Run(tn, func(t *testing.T) {
			var out bytes.Buffer
			if err := explain(&out, raw, options.CronDefault); err != nil {
				t.Fatal(err)
			}

			g.Assert(t, tn, out.Bytes())
		})
	}
}

func TestExplainErrors(t *testing.T) {
	var out bytes.Buffer

	assert.ErrorIs(t, explain(&out, `"open`, options.None), shell.ErrMismatchedQuotes)
	assert.ErrorIs(t, explain(&out, `#tag`, options.None), shell.ErrNoCommand)
	assert.Empty(t, out.String())
}
