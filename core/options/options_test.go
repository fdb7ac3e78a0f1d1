package options

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleMerge() {
	defaults, _ := Parse("crondefault sendto-file")
	merged, unknown := Merge(defaults, "!capture-stderr *sendto-pipe sendif-status bogus")

	fmt.Println(merged)
	fmt.Println(unknown)

	// Output: sendto-pipe sendif-status
	// [bogus]
}

func TestMerge(t *testing.T) {
	cases := map[string]struct {
		base        Set
		text        string
		want        Set
		wantUnknown []string
	}{
		"empty text":         {base: SendtoFile, text: "", want: SendtoFile},
		"only spaces":        {base: SendtoFile, text: "   ", want: SendtoFile},
		"set":                {text: "capture-stdout", want: CaptureStdout},
		"set group":          {text: "capture-all", want: CaptureStdout | CaptureStderr},
		"negate group":       {base: CaptureAll | Silent, text: "!capture-all", want: Silent},
		"negate one of pair": {base: CaptureAll, text: "!capture-stderr", want: CaptureStdout},
		"exclusive":          {base: SendtoAll | CaptureAll, text: "*silent", want: Silent},
		"exclusive then set": {base: SendtoAll, text: "*silent capture-stdout", want: Silent | CaptureStdout},
		"set then exclusive": {text: "capture-stdout *sendto-file", want: SendtoFile},
		"left to right":      {text: "sendto-pipe !sendto-pipe sendto-pipe", want: SendtoPipe},
		"negate unset bit":   {base: Silent, text: "!sendto-file", want: Silent},
		"double spaces":      {text: "silent  sendto-file", want: Silent | SendtoFile},
		"legacy names":       {text: "captureall sendtocron sendtolog sendfallback", want: CaptureAll | SendtoStdout | SendtoFile | SendtoFallback},
		"unknown":            {base: Silent, text: "nope !nah", want: Silent, wantUnknown: []string{"nope", "!nah"}},
		"bare modifiers":     {base: Silent, text: "! *", want: Silent, wantUnknown: []string{"!", "*"}},
		"crondefault":        {text: "crondefault", want: CronDefault},
		"not crondefault":    {base: CronDefault | SendtoFile, text: "!crondefault", want: SendtoFile},
		"sendif any":         {text: "sendif-any", want: SendifAny},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			got, unknown := Merge(tc.base, tc.text)

			assert.Equal(t, tc.want, got, "want %q got %q", tc.want, got)
			assert.Equal(t, tc.wantUnknown, unknown)
		})
	}
}

func TestMergeNegationInverse(t *testing.T) {
	for _, base := range []Set{None, Silent, SendtoAll, CaptureStderr | SendifStatus} {
		t.Run(base.String(), func(t *testing.T) {
			set, _ := Merge(base, "capture-stdout")
			back, _ := Merge(set, "!capture-stdout")
			assert.Equal(t, base, back)
		})
	}
}

func TestMergeExclusive(t *testing.T) {
	for _, base := range []Set{None, Silent, SendtoAll | CaptureAll, CronDefault | SendifAny} {
		got, _ := Merge(base, "*silent")
		assert.Equal(t, Silent, got)
	}
}

func TestMergeDeterministic(t *testing.T) {
	text := "crondefault !sendif-stdout sendto-pipe *capture-all sendto-file !capture-stderr"
	first, _ := Merge(SendtoStdout, text)
	for i := 0; i < 10; i++ {
		again, _ := Merge(SendtoStdout, text)
		assert.Equal(t, first, again)
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []Set{None, CronDefault, SendifAny | Silent, SendtoAll | SendtoFallback} {
		parsed, unknown := Parse(s.String())
		assert.Empty(t, unknown)
		assert.Equal(t, s, parsed)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	for _, name := range names {
		_, ok := Lookup(name)
		assert.True(t, ok, name)
	}
	assert.Contains(t, names, "crondefault")
	assert.Contains(t, names, "sendif-stderr-none")
}

func TestShouldSend(t *testing.T) {
	ok := Outcome{}
	failed := Outcome{Status: 2}
	killed := Outcome{Status: -1, Signal: 9}
	chatty := Outcome{StdoutLen: 4}
	noisy := Outcome{StderrLen: 1}

	cases := map[string]struct {
		set     Set
		outcome Outcome
		want    bool
	}{
		"no predicates":            {set: SendtoStdout, outcome: ok, want: true},
		"status on success":        {set: SendifStatus, outcome: ok, want: false},
		"status on failure":        {set: SendifStatus, outcome: failed, want: true},
		"status ok on success":     {set: SendifStatusOK, outcome: ok, want: true},
		"status any":               {set: SendifStatusAny, outcome: ok, want: true},
		"signal":                   {set: SendifSignal, outcome: killed, want: true},
		"signal ok on kill":        {set: SendifSignalOK, outcome: killed, want: false},
		"stdout none with output":  {set: SendifStdoutNone, outcome: chatty, want: false},
		"stdout with output":       {set: SendifStdout, outcome: chatty, want: true},
		"stderr":                   {set: SendifStderr, outcome: noisy, want: true},
		"stderr none":              {set: SendifStderrNone, outcome: noisy, want: false},
		"crondefault quiet":        {set: CronDefault, outcome: ok, want: false},
		"crondefault failure":      {set: CronDefault, outcome: failed, want: true},
		"crondefault killed":       {set: CronDefault, outcome: killed, want: true},
		"crondefault stdout":       {set: CronDefault, outcome: chatty, want: true},
		"crondefault stderr":       {set: CronDefault, outcome: noisy, want: true},
		"sendif any always fires":  {set: SendifAny, outcome: ok, want: true},
		"unrelated flags no gates": {set: Silent | CaptureAll, outcome: failed, want: true},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.set.ShouldSend(tc.outcome))
		})
	}
}
