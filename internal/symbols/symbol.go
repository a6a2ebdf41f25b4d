package symbols

import (
	"opp/internal/ast"
	"opp/internal/source"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolClass
	SymbolInstance
	SymbolMethod
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolClass:
		return "clazz"
	case SymbolInstance:
		return "instance"
	case SymbolMethod:
		return "method"
	default:
		return "invalid"
	}
}

// InstanceKind distinguishes storage of an instance symbol.
type InstanceKind uint8

const (
	InstanceField InstanceKind = iota
	InstanceLocal
	InstanceParam
)

func (k InstanceKind) String() string {
	switch k {
	case InstanceField:
		return "field"
	case InstanceLocal:
		return "local"
	case InstanceParam:
		return "parameter"
	default:
		return "invalid"
	}
}

// MethodKind tells methods from constructors and declarations from definitions.
type MethodKind uint8

const (
	MethodDecl MethodKind = iota
	MethodDef
	CtorDecl
	CtorDef
)

func (k MethodKind) String() string {
	switch k {
	case MethodDecl:
		return "method_declaration"
	case MethodDef:
		return "method_definition"
	case CtorDecl:
		return "constructor_declaration"
	case CtorDef:
		return "constructor_definition"
	default:
		return "invalid"
	}
}

// IsCtor reports whether the kind denotes a constructor.
func (k MethodKind) IsCtor() bool { return k == CtorDecl || k == CtorDef }

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint8

const (
	SymbolFlagBuiltin SymbolFlags = 1 << iota
)

// Symbol describes a named entity bound to exactly one scope.
//
// Fields beyond Name/Kind/Decl are meaningful per kind:
//   - class: Extends (parent name as written, "" for none)
//   - instance: Instance, Type (NoSymbolID until inferred, then set once)
//   - method: Method, Owner, Params, Return (NoSymbolID means void), Display
type Symbol struct {
	Name  string // key in the parent scope; mangled for methods and constructors
	Kind  SymbolKind
	Scope ScopeID
	Decl  ast.NodeID
	Span  source.Span
	Flags SymbolFlags

	Extends string

	Instance InstanceKind
	Type     SymbolID

	Method  MethodKind
	Display string // unmangled method name
	Owner   SymbolID
	Params  []SymbolID
	Return  SymbolID
}

// IsClass reports whether s is a class symbol.
func (s *Symbol) IsClass() bool { return s != nil && s.Kind == SymbolClass }

// IsInstance reports whether s is an instance symbol.
func (s *Symbol) IsInstance() bool { return s != nil && s.Kind == SymbolInstance }

// IsMethod reports whether s is a method or constructor symbol.
func (s *Symbol) IsMethod() bool { return s != nil && s.Kind == SymbolMethod }

// IsField reports whether s is an instance symbol of kind field.
func (s *Symbol) IsField() bool { return s.IsInstance() && s.Instance == InstanceField }

// NewClass returns a class symbol template.
func NewClass(name, extends string, decl ast.NodeID, span source.Span) *Symbol {
	return &Symbol{Name: name, Kind: SymbolClass, Extends: extends, Decl: decl, Span: span}
}

// NewInstance returns an instance symbol template with no resolved class.
func NewInstance(kind InstanceKind, name string, decl ast.NodeID, span source.Span) *Symbol {
	return &Symbol{Name: name, Kind: SymbolInstance, Instance: kind, Decl: decl, Span: span}
}

// NewMethod returns a method symbol template keyed by its mangled name.
func NewMethod(kind MethodKind, display string, owner SymbolID, params []SymbolID, ret SymbolID, mangled string, decl ast.NodeID, span source.Span) *Symbol {
	return &Symbol{
		Name:    mangled,
		Kind:    SymbolMethod,
		Method:  kind,
		Display: display,
		Owner:   owner,
		Params:  params,
		Return:  ret,
		Decl:    decl,
		Span:    span,
	}
}
