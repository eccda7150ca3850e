package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// File is the root of a parsed OIR source file.
type File struct {
	Module string  `parser:"\"module\" @Ident"`
	Decls  []*Decl `parser:"@@*"`
}

type Decl struct {
	Nominal *NominalDef `parser:"  @@"`
	Func    *FuncDef    `parser:"| @@"`
}

type NominalDef struct {
	Pos        lexer.Position
	Name       string     `parser:"\"nominal\" @Ident"`
	TypeParams []string   `parser:"(\"<\" @Ident (\",\" @Ident)* \">\")?"`
	Attrs      []string   `parser:"(\":\" @(\"noncopyable\" | \"address_only\") (\",\" @(\"noncopyable\" | \"address_only\"))*)?"`
	Deinit     *DeinitDef `parser:"\"{\" @@? \"}\""`
}

type DeinitDef struct {
	Pos        lexer.Position
	Symbol     string `parser:"\"deinit\" @Symbol"`
	Convention string `parser:"@(\"direct\" | \"indirect\")"`
}

type FuncDef struct {
	Pos    lexer.Position
	Name   string      `parser:"\"fn\" @Ident"`
	Params []*ParamDef `parser:"\"(\" (@@ (\",\" @@)*)? \")\""`
	Blocks []*BlockDef `parser:"\"{\" @@* \"}\""`
}

type ParamDef struct {
	Pos   lexer.Position
	Value string   `parser:"@Value \":\""`
	Type  *TypeRef `parser:"@@"`
}

type BlockDef struct {
	Pos    lexer.Position
	Label  string      `parser:"@Ident \":\""`
	Instrs []*InstrDef `parser:"@@*"`
	Term   *TermDef    `parser:"@@"`
}

// InstrDef is either a value-producing instruction (%n = op ...) or a
// pure effect.
type InstrDef struct {
	Pos    lexer.Position
	Assign *AssignDef `parser:"  @@"`
	Effect *EffectDef `parser:"| @@"`
}

type AssignDef struct {
	Result string      `parser:"@Value \"=\""`
	Op     *ValueOpDef `parser:"@@"`
}

type ValueOpDef struct {
	Construct   *ConstructOp   `parser:"  @@"`
	Tuple       *TupleOp       `parser:"| @@"`
	MoveValue   *MoveValueOp   `parser:"| @@"`
	DropDeinit  *DropDeinitOp  `parser:"| @@"`
	Load        *LoadOp        `parser:"| @@"`
	AllocStack  *AllocStackOp  `parser:"| @@"`
	FunctionRef *FunctionRefOp `parser:"| @@"`
	Apply       *ApplyOp       `parser:"| @@"`
}

type EffectDef struct {
	DestroyValue *DestroyValueOp `parser:"  @@"`
	DestroyAddr  *DestroyAddrOp  `parser:"| @@"`
	Store        *StoreOp        `parser:"| @@"`
	DeallocStack *DeallocStackOp `parser:"| @@"`
	Apply        *ApplyOp        `parser:"| @@"`
}

type DestroyValueOp struct {
	Value string `parser:"\"destroy_value\" @Value"`
}

type DestroyAddrOp struct {
	Addr string `parser:"\"destroy_addr\" @Value"`
}

type ConstructOp struct {
	Type *TypeRef `parser:"\"construct\" @@"`
	Args []string `parser:"(\"(\" @Value (\",\" @Value)* \")\")?"`
}

type TupleOp struct {
	Tuple bool     `parser:"@\"tuple\""`
	Elems []string `parser:"\"(\" (@Value (\",\" @Value)*)? \")\""`
}

type MoveValueOp struct {
	Value string `parser:"\"move_value\" @Value"`
}

type DropDeinitOp struct {
	Value string `parser:"\"drop_deinit\" @Value"`
}

type LoadOp struct {
	Ownership string `parser:"\"load\" \"[\" @(\"take\" | \"copy\") \"]\""`
	Addr      string `parser:"@Value"`
}

type StoreOp struct {
	Value     string `parser:"\"store\" @Value"`
	Ownership string `parser:"\"to\" \"[\" @(\"init\" | \"assign\") \"]\""`
	Addr      string `parser:"@Value"`
}

type AllocStackOp struct {
	Type *TypeRef `parser:"\"alloc_stack\" @@"`
}

type DeallocStackOp struct {
	Addr string `parser:"\"dealloc_stack\" @Value"`
}

type FunctionRefOp struct {
	Symbol string `parser:"\"function_ref\" @Symbol"`
}

type ApplyOp struct {
	Pos    lexer.Position
	Callee string      `parser:"\"apply\" @Value"`
	Subs   []*SubstDef `parser:"(\"<\" @@ (\",\" @@)* \">\")?"`
	Args   []string    `parser:"\"(\" (@Value (\",\" @Value)*)? \")\""`
}

type SubstDef struct {
	Param string   `parser:"@Ident \"=\""`
	Arg   *TypeRef `parser:"@@"`
}

type TermDef struct {
	Pos    lexer.Position
	Return *ReturnTermDef `parser:"  @@"`
	Br     *BrTermDef     `parser:"| @@"`
	CondBr *CondBrTermDef `parser:"| @@"`
}

type ReturnTermDef struct {
	Keyword bool    `parser:"@\"return\""`
	Value   *string `parser:"@Value?"`
}

type BrTermDef struct {
	Target string `parser:"\"br\" @Ident"`
}

type CondBrTermDef struct {
	Cond  string `parser:"\"cond_br\" @Value \",\""`
	True  string `parser:"@Ident \",\""`
	False string `parser:"@Ident"`
}

type TypeRef struct {
	Pos   lexer.Position
	Addr  *TypeRef      `parser:"  \"*\" @@"`
	Tuple *TupleTypeRef `parser:"| @@"`
	Named *NamedTypeRef `parser:"| @@"`
}

type TupleTypeRef struct {
	Open  bool       `parser:"@\"(\""`
	Elems []*TypeRef `parser:"(@@ (\",\" @@)*)? \")\""`
}

type NamedTypeRef struct {
	Name string     `parser:"@Ident"`
	Args []*TypeRef `parser:"(\"<\" @@ (\",\" @@)* \">\")?"`
}
