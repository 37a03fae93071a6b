package batch

import "sort"

// UnknownError is the error text used when a failed item carries none.
const UnknownError = "Unknown error"

// Termination is the terminal state of a bundled batch.
type Termination string

const (
	AllAttempted Termination = "all_attempted"
	StoppedEarly Termination = "stopped_early"
)

// Outcome is the terminal state of one submitted operation: it either
// succeeded or failed.
type Outcome struct {
	Index  int    `yaml:"index"            json:"index"`
	Label  string `yaml:"label"            json:"label"` // element kind or command name
	OK     bool   `yaml:"ok"               json:"ok"`
	NodeID string `yaml:"nodeId,omitempty" json:"nodeId,omitempty"`
	Error  string `yaml:"error,omitempty"  json:"error,omitempty"`
	Result any    `yaml:"result,omitempty" json:"result,omitempty"`
}

// Result is the aggregated, caller-facing view of one batch.
type Result struct {
	Operation    Operation   `yaml:"operation"              json:"operation"`
	Total        int         `yaml:"total"                  json:"total"`
	Succeeded    int         `yaml:"succeeded"              json:"succeeded"`
	Failed       int         `yaml:"failed"                 json:"failed"`
	NotAttempted int         `yaml:"notAttempted,omitempty" json:"notAttempted,omitempty"`
	Termination  Termination `yaml:"termination"            json:"termination"`
	Message      string      `yaml:"message,omitempty"      json:"message,omitempty"`
	Outcomes     []Outcome   `yaml:"outcomes"               json:"outcomes"`
}

// SucceededItems returns the succeeded outcomes in submission order.
func (r Result) SucceededItems() []Outcome {
	return r.filter(true)
}

// FailedItems returns the failed outcomes in submission order.
func (r Result) FailedItems() []Outcome {
	return r.filter(false)
}

func (r Result) filter(ok bool) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.OK == ok {
			out = append(out, o)
		}
	}
	return out
}

// AggregateElements builds the Result for a batch_create_elements reply.
// Element results arrive in submission order unless the executor echoes an
// explicit index.
func AggregateElements(env ElementEnvelope, reply ElementReply) Result {
	res := Result{
		Operation:   OpCreateElements,
		Total:       env.Len(),
		Succeeded:   reply.CreatedCount,
		Failed:      reply.FailedCount,
		Termination: AllAttempted,
		Message:     reply.Message,
	}

	positional := make([]int, env.Len())
	for i, it := range env.Items {
		positional[i] = it.Index
	}
	idx := newIndexer(env.Len(), positional)

	res.Outcomes = make([]Outcome, 0, len(reply.Results))
	for p, r := range reply.Results {
		i := idx.resolve(p, r.Index)
		label := r.Type
		if label == "" && i < env.Len() {
			label = env.Items[i].Element.Label()
		}
		res.Outcomes = append(res.Outcomes, newOutcome(i, label, r.Success, r.NodeID, r.Error, nil))
	}
	sortOutcomes(res.Outcomes)
	return res
}

// AggregateCommands builds the Result for an execute_bundled_commands
// reply. Reply results are in execution order; outcomes are re-correlated to
// submission order. With stop-on-error, anything the executor reports after
// the first failure is dropped.
func AggregateCommands(env CommandEnvelope, reply CommandReply) Result {
	res := Result{
		Operation:   OpBundledCommands,
		Total:       env.Len(),
		Succeeded:   reply.CompletedCount,
		Failed:      reply.FailedCount,
		Termination: AllAttempted,
		Message:     reply.Message,
	}

	results := reply.Results
	if env.StopOnError {
		for p, r := range results {
			if !r.Success {
				results = results[:p+1]
				break
			}
		}
	}

	positional := make([]int, len(env.Sequenced))
	for i, it := range env.Sequenced {
		positional[i] = it.Index
	}
	idx := newIndexer(env.Len(), positional)

	failures := 0
	res.Outcomes = make([]Outcome, 0, len(results))
	for p, r := range results {
		i := idx.resolve(p, r.Index)
		label := r.Command
		if label == "" && i < env.Len() {
			label = env.Items[i].Command.Label()
		}
		if !r.Success {
			failures++
		}
		res.Outcomes = append(res.Outcomes, newOutcome(i, label, r.Success, "", r.Error, r.Result))
	}
	sortOutcomes(res.Outcomes)

	attempted := len(results)
	if reply.HasCounts {
		attempted = reply.CompletedCount + reply.FailedCount
	}
	if reply.FailedCount > failures {
		failures = reply.FailedCount
	}
	if env.StopOnError && failures > 0 && attempted < env.Len() {
		res.Termination = StoppedEarly
		res.NotAttempted = env.Len() - attempted
	}
	return res
}

func newOutcome(index int, label string, ok bool, nodeID, errText string, result any) Outcome {
	if label == "" {
		label = "Unknown"
	}
	o := Outcome{Index: index, Label: label, OK: ok}
	if ok {
		o.NodeID = nodeID
		o.Result = result
		return o
	}
	o.Error = errText
	if o.Error == "" {
		o.Error = UnknownError
	}
	return o
}

func sortOutcomes(outcomes []Outcome) {
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Index < outcomes[j].Index
	})
}

// indexer maps reply positions back to submission indexes. An echoed index
// wins when it is in range and unused; otherwise the position in the sent
// sequence is used, or the first sent index nothing has claimed yet. Only
// once every sent index is taken do results get indexes past the end, so
// they still sort last.
type indexer struct {
	total      int
	positional []int
	used       map[int]bool
	extra      int
}

func newIndexer(total int, positional []int) *indexer {
	return &indexer{total: total, positional: positional, used: make(map[int]bool, total)}
}

func (x *indexer) resolve(pos int, echoed *int) int {
	if echoed != nil && *echoed >= 0 && *echoed < x.total && !x.used[*echoed] {
		x.used[*echoed] = true
		return *echoed
	}
	if pos < len(x.positional) && !x.used[x.positional[pos]] {
		i := x.positional[pos]
		x.used[i] = true
		return i
	}
	// The slot was claimed by an echoed index; take the next one still free.
	for _, i := range x.positional {
		if !x.used[i] {
			x.used[i] = true
			return i
		}
	}
	i := x.total + x.extra
	x.extra++
	return i
}
