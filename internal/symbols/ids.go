package symbols

// ScopeID and SymbolID index the table arenas. 0 is reserved for "none",
// so zero-valued scopes and symbols never point anywhere.
type (
	ScopeID  uint32
	SymbolID uint32
)

const (
	NoScopeID  ScopeID  = 0
	NoSymbolID SymbolID = 0
)

func (id ScopeID) IsValid() bool  { return id != NoScopeID }
func (id SymbolID) IsValid() bool { return id != NoSymbolID }
