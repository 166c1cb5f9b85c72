package grammar

import (
	"encoding/json"
	"fmt"
	"io"
)

// Suppression levels of an action.
const (
	SuppressionNone       = ""
	SuppressionConflict   = "conflict"
	SuppressionPrecedence = "precedence"
	SuppressionDefault    = "default"
)

// Action types.
const (
	ActionShift  = "shift"
	ActionReduce = "reduce"
	ActionAccept = "accept"
	ActionError  = "error"
)

// Methods used to resolve conflicts.
const (
	ResolvedByPrec      = 1
	ResolvedByAssoc     = 2
	ResolvedByShift     = 3
	ResolvedByProdOrder = 4
	ResolvedByAccept    = 5
)

type Terminal struct {
	Number        int    `json:"number"`
	Name          string `json:"name"`
	Precedence    int    `json:"prec"`
	Associativity string `json:"assoc"`
}

type NonTerminal struct {
	Number   int    `json:"number"`
	Name     string `json:"name"`
	Nullable bool   `json:"nullable"`
}

// Production is a rule of the grammar. Number is the rule number shown to users; the rule 0 is
// `$accept : start $end`. RHS holds terminal numbers as positive values and non-terminal numbers
// as negative values.
type Production struct {
	Number        int    `json:"number"`
	LHS           int    `json:"lhs"`
	RHS           []int  `json:"rhs"`
	Precedence    int    `json:"prec"`
	Associativity string `json:"assoc"`
	Used          bool   `json:"used"`
}

type Item struct {
	Production int `json:"production"`
	Dot        int `json:"dot"`
}

type Transition struct {
	Symbol int `json:"symbol"`
	State  int `json:"state"`
}

// Action is an entry of a state's action list. Suppressed actions stay in the list so that the
// report can explain every decision.
type Action struct {
	Symbol      int    `json:"symbol"`
	Type        string `json:"type"`
	State       int    `json:"state,omitempty"`
	Production  int    `json:"production,omitempty"`
	Suppression string `json:"suppression,omitempty"`
}

// SRConflict is a conflict between a shift (or the accepting action when Accept is true) and a
// reduction. When neither AdoptedState nor AdoptedProduction is set, the conflict was resolved
// to an error by a non-associative precedence.
type SRConflict struct {
	Symbol            int  `json:"symbol"`
	State             int  `json:"state"`
	Production        int  `json:"production"`
	Accept            bool `json:"accept,omitempty"`
	AdoptedState      *int `json:"adopted_state"`
	AdoptedProduction *int `json:"adopted_production"`
	ResolvedBy        int  `json:"resolved_by"`
}

type RRConflict struct {
	Symbol            int `json:"symbol"`
	Production1       int `json:"production_1"`
	Production2       int `json:"production_2"`
	AdoptedProduction int `json:"adopted_production"`
	ResolvedBy        int `json:"resolved_by"`
}

type State struct {
	Number           int           `json:"number"`
	Kernel           []*Item       `json:"kernel"`
	Actions          []*Action     `json:"actions"`
	DefaultReduction *int          `json:"default_reduction,omitempty"`
	GoTo             []*Transition `json:"goto"`
	SRConflict       []*SRConflict `json:"sr_conflict"`
	RRConflict       []*RRConflict `json:"rr_conflict"`

	// SRConflictCount and RRConflictCount count only the conflicts that no precedence resolved.
	SRConflictCount int `json:"sr_conflict_count"`
	RRConflictCount int `json:"rr_conflict_count"`
}

type Report struct {
	Terminals       []*Terminal    `json:"terminals"`
	NonTerminals    []*NonTerminal `json:"non_terminals"`
	Productions     []*Production  `json:"productions"`
	States          []*State       `json:"states"`
	InitialState    int            `json:"initial_state"`
	FinalState      int            `json:"final_state"`
	SRConflictCount int            `json:"sr_conflict_count"`
	RRConflictCount int            `json:"rr_conflict_count"`
	UnusedRuleCount int            `json:"unused_rule_count"`
}

func ReadReport(r io.Reader) (*Report, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return nil, fmt.Errorf("failed to decode a report: %w", err)
	}
	return &rep, nil
}
