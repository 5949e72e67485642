package flow

import "strings"

// StepID names one node of the conversation graph.
type StepID string

const (
	StepStart        StepID = "start"
	StepUploadAck    StepID = "upload-ack"
	StepBeginManual  StepID = "begin-manual"
	StepCollectField StepID = "collect-field"
	StepReview       StepID = "review"
	StepPersist      StepID = "persist"
	StepReset        StepID = "reset"
)

// Rule pairs a predicate with the step that handles a matching turn.
type Rule struct {
	Match func(input string, st State) bool
	Step  StepID
}

// keyword matches when the input contains any of the given phrases.
func keyword(phrases ...string) func(string, State) bool {
	return func(input string, _ State) bool {
		for _, phrase := range phrases {
			if strings.Contains(input, phrase) {
				return true
			}
		}
		return false
	}
}

// DefaultRules is the dispatch table checked in order on every turn. The
// ordering is a contract: keyword rules run before the pending-field rule,
// so a command word inside a field answer wins over field collection.
func DefaultRules() []Rule {
	return []Rule{
		{Match: keyword("start onboarding"), Step: StepStart},
		{Match: keyword("upload"), Step: StepUploadAck},
		{Match: keyword("enter manually", "add another"), Step: StepBeginManual},
		{Match: keyword("save"), Step: StepPersist},
		{Match: keyword("modify", "review"), Step: StepReview},
		{Match: keyword("clear"), Step: StepReset},
		{Match: func(_ string, st State) bool { return st.PendingField != "" }, Step: StepCollectField},
	}
}

// Router selects the step that handles the current turn.
type Router struct {
	rules []Rule
}

func NewRouter(rules []Rule) *Router {
	return &Router{rules: rules}
}

// Route is a pure function of the lowercased last message content and the
// pending field. Unrecognized input falls back to StepStart rather than
// failing: the conversation restarts its top-level choice.
func (r *Router) Route(st State) StepID {
	if len(st.History) == 0 {
		return StepStart
	}
	input := strings.ToLower(st.LastContent())
	for _, rule := range r.rules {
		if rule.Match(input, st) {
			return rule.Step
		}
	}
	return StepStart
}
