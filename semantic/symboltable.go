// symboltable.go implements the scoped symbol table the semantic
// analyzer uses to track declared names: reserved type names, variables,
// and functions.

package semantic

// Kind distinguishes the three symbol varieties a Table can hold.
type Kind int

const (
	KindType Kind = iota
	KindVariable
	KindFunction
)

// Symbol is an entry in a Table: a declared name together with what kind
// of thing it names. Arity is only meaningful for KindFunction.
type Symbol struct {
	Name  string
	Kind  Kind
	Arity int
}

func (s Symbol) String() string {
	switch s.Kind {
	case KindType:
		return "<type:" + s.Name + ">"
	case KindFunction:
		return "<function:" + s.Name + ">"
	default:
		return "<variable:" + s.Name + ">"
	}
}

// Table is a lexically scoped symbol table. Lookups chain to the
// enclosing table unless restrict is requested, matching the original
// analyzer's get(name, restrict) behavior: restrict=true only checks
// this table's own entries, used for duplicate-definition checks.
type Table struct {
	name      string
	entries   map[string]Symbol
	enclosing *Table
}

// NewTable creates an empty, unparented symbol table.
func NewTable(name string) *Table {
	return &Table{name: name, entries: make(map[string]Symbol)}
}

// SetEnclosing sets the table this table chains lookups to when a name
// is not found locally.
func (t *Table) SetEnclosing(parent *Table) {
	t.enclosing = parent
}

// Enclosing returns the table's parent scope, or nil at the root.
func (t *Table) Enclosing() *Table {
	return t.enclosing
}

// Get looks up name, walking up through enclosing scopes unless restrict
// is set, in which case only this table's own entries are considered.
func (t *Table) Get(name string, restrict bool) (Symbol, bool) {
	if sym, ok := t.entries[name]; ok {
		return sym, true
	}
	if restrict || t.enclosing == nil {
		return Symbol{}, false
	}
	return t.enclosing.Get(name, false)
}

// Add binds a symbol in this table, shadowing any prior binding of the
// same name.
func (t *Table) Add(sym Symbol) {
	t.entries[sym.Name] = sym
}
