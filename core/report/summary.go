package report

import (
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strconv"

	"gopkg.in/yaml.v2"
)

// UntaggedKey groups reports of commands without a tag.
const UntaggedKey = "[none]"

// ReadReports parses a stream of YAML report documents, as appended to the
// report file.
func ReadReports(r io.Reader, handler func(r *Report)) error {
	decoder := yaml.NewDecoder(r)
	for {
		var rep Report
		err := decoder.Decode(&rep)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		handler(&rep)
	}
}

// NewSummary creates an empty summary.
func NewSummary() *Summary {
	return &Summary{
		Tags:     make(map[string]*TagSummary),
		Failures: NewPathCounter("tag", "status"),
		Signals:  NewPathCounter("tag", "signal"),
	}
}

// Summary holds statistics about a stream of reports.
type Summary struct {
	Reports int        `json:"reports"`
	Hosts   StrCounter `json:"hosts"`
	Users   StrCounter `json:"users"`

	Tags     map[string]*TagSummary `json:"tags"`
	Failures *PathCounter           `json:"failures"`
	Signals  *PathCounter           `json:"signals"`
}

// Update adds a report to the summary.
func (s *Summary) Update(r *Report) {
	s.Reports++
	s.Hosts.Increment(r.Hostname)
	s.Users.Increment(r.User)

	tag := r.Tag
	if tag == "" {
		tag = UntaggedKey
	}

	ts, ok := s.Tags[tag]
	if !ok {
		ts = &TagSummary{}
		s.Tags[tag] = ts
	}
	ts.update(r)

	switch {
	case r.Signal != 0:
		s.Signals.Increment(tag, strconv.Itoa(r.Signal))
	case r.Status != 0:
		s.Failures.Increment(tag, strconv.Itoa(r.Status))
	}
}

// TagSummary holds statistics for one tag.
type TagSummary struct {
	Runs     int `json:"runs"`
	Failures int `json:"failures"`
	Signaled int `json:"signaled"`

	// Runtimes in milliseconds.
	TotalRuntime int64 `json:"total_runtime_ms"`
	MaxRuntime   int64 `json:"max_runtime_ms"`
	LastStart    int64 `json:"last_start"`

	Commands StrCounter `json:"commands"`
}

func (t *TagSummary) update(r *Report) {
	t.Runs++
	if r.Signal != 0 {
		t.Signaled++
	} else if r.Status != 0 {
		t.Failures++
	}

	t.TotalRuntime += r.Runtime
	if r.Runtime > t.MaxRuntime {
		t.MaxRuntime = r.Runtime
	}
	if r.StartTime > t.LastStart {
		t.LastStart = r.StartTime
	}

	if len(r.Command) > 0 {
		t.Commands.Increment(r.Command[0])
	}
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the count for key.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// MarshalJSON implements a custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts tuples of strings.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given tuple.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// Get returns the count for a tuple.
func (ctr *PathCounter) Get(vals ...string) int {
	return ctr.internal[toKey(vals...)]
}

// MarshalJSON implements a custom JSON marshaler. Tuples are sorted by
// descending count.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
