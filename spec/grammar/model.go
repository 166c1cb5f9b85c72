package grammar

import (
	"encoding/json"
	"fmt"
	"io"
)

// Associativities a precedence level can take.
const (
	AssociativityNone     = ""
	AssociativityLeft     = "left"
	AssociativityRight    = "right"
	AssociativityNonAssoc = "nonassoc"
)

// GrammarModel is the serialized form of a grammar handed to the compiler.
//
// A name appearing as the LHS of some rule is a non-terminal. Every other name must be declared
// as a terminal, either in Terminals or in a precedence level.
type GrammarModel struct {
	Name string `json:"name"`

	// Start is the start symbol. When it is empty, the LHS of the first rule is used.
	Start string `json:"start,omitempty"`

	Terminals []string `json:"terminals,omitempty"`

	// Precedence lists the levels from the lowest to the highest.
	Precedence []*PrecedenceLevel `json:"precedence,omitempty"`

	Rules []*Rule `json:"rules"`
}

type PrecedenceLevel struct {
	Associativity string   `json:"assoc"`
	Symbols       []string `json:"symbols"`
}

type Rule struct {
	LHS string   `json:"lhs"`
	RHS []string `json:"rhs"`

	// Prec names a terminal whose precedence overrides the one inherited from the right-most
	// terminal of RHS.
	Prec string `json:"prec,omitempty"`
}

func ReadGrammarModel(r io.Reader) (*GrammarModel, error) {
	d := json.NewDecoder(r)
	d.DisallowUnknownFields()
	var m GrammarModel
	if err := d.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode a grammar model: %w", err)
	}
	return &m, nil
}
