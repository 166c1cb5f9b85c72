package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrNoGrammarName       = newSemanticError("name is missing")
	semErrNoProduction        = newSemanticError("a grammar needs at least one production")
	semErrUndefinedSym        = newSemanticError("undefined symbol")
	semErrReservedName        = newSemanticError("names beginning with '$' are reserved")
	semErrInvalidName         = newSemanticError("a symbol name must be non-empty")
	semErrUndefinedStart      = newSemanticError("the start symbol must be a non-terminal having productions")
	semErrDuplicateProduction = newSemanticError("duplicate production")
	semErrDuplicateTerminal   = newSemanticError("duplicate terminal")
	semErrDuplicateName       = newSemanticError("duplicate names are not allowed between terminals and non-terminals")
	semErrDuplicateAssoc      = newSemanticError("associativity and precedence cannot be specified multiple times for a symbol")
	semErrInvalidAssoc        = newSemanticError("invalid associativity")
	semErrEmptyPrecLevel      = newSemanticError("a precedence level needs at least one symbol")
	semErrUndefinedPrec       = newSemanticError("symbol must has precedence")
	semErrNullEntry           = newSemanticError("a rule or a precedence level must not be null")
	semErrTooManySymbols      = newSemanticError("too many symbols")
)
