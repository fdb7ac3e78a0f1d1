package shell

import (
	"errors"
	"strings"
)

/**
A cron line has the form:

	executable [arguments...] [#[tag] [options...]]

Words are separated by runs of blanks (space, tab, CR, LF). Single and double
quotes are the same character class: either one opens a quoted region and
either one closes it. A backslash escapes a quote, a backslash and, outside
quotes, a blank. Before anything else the backslash is kept, so `wo\rld` stays
as written. A lone backslash at the end of the line is dropped.

	"hello world"    -> [hello world]
	hello\ world     -> [hello world]
	"hello world\\"  -> [hello world\]
	"hello\ world"   -> [hello\ world]
	hello wo\rld     -> [hello] [wo\rld]
	"hello world\"   -> mismatched quotes

After splitting, the first word starting with # ends the command. The rest of
that word is the tag and the words after it are the options.
**/

const tagMarker = '#'

var (
	// ErrMismatchedQuotes is returned when the line ends inside quotes.
	ErrMismatchedQuotes = errors.New("mis-matching quotes")

	// ErrNoCommand is returned when the line holds no executable.
	ErrNoCommand = errors.New("no command given")
)

// Line is a tokenized cron line.
type Line struct {
	// Argv holds the executable and its arguments, never empty.
	Argv []string
	// Tag is the text directly after the # marker.
	Tag string
	// HasMarker is set if the line contained a # marker, even a bare one.
	HasMarker bool
	// OptionText holds the words after the marker joined by single spaces.
	OptionText string
}

type charClass int

const (
	classOrdinary charClass = iota
	classQuote
	classEscape
	classBlank
)

func classify(c byte) charClass {
	switch c {
	case '"', '\'':
		return classQuote
	case '\\':
		return classEscape
	case ' ', '\t', '\r', '\n':
		return classBlank
	default:
		return classOrdinary
	}
}

// Split breaks raw into unescaped words. Nothing after a NUL byte is read.
func Split(raw string) ([]string, error) {
	if i := strings.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}

	var (
		words    []string
		word     []byte
		escaped  bool
		inQuotes bool
	)

	flush := func() {
		// Runs of blanks and empty quotes never make empty words.
		if len(word) > 0 {
			words = append(words, string(word))
			word = word[:0]
		}
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		class := classify(c)

		if escaped {
			escaped = false
			switch {
			case class == classQuote, class == classEscape:
				word = append(word, c)
			case class == classBlank && !inQuotes:
				word = append(word, c)
			default:
				word = append(word, '\\', c)
			}
			continue
		}

		switch class {
		case classEscape:
			escaped = true
		case classQuote:
			inQuotes = !inQuotes
		case classBlank:
			if inQuotes {
				word = append(word, c)
			} else {
				flush()
			}
		default:
			word = append(word, c)
		}
	}

	if inQuotes {
		return nil, ErrMismatchedQuotes
	}

	flush()
	return words, nil
}

// Tokenize splits raw and separates the command from its tag and options.
func Tokenize(raw string) (*Line, error) {
	words, err := Split(raw)
	if err != nil {
		return nil, err
	}

	line := &Line{}
	var opts []string
	for i, word := range words {
		if word[0] != tagMarker {
			continue
		}

		line.Argv = words[:i]
		line.Tag = word[1:]
		line.HasMarker = true
		opts = words[i+1:]
		break
	}

	if !line.HasMarker {
		line.Argv = words
	}

	if len(line.Argv) == 0 {
		return nil, ErrNoCommand
	}

	line.OptionText = strings.Join(opts, " ")
	return line, nil
}
