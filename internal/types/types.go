// Package types holds the identifiers and enums shared across every
// codelens package: file/symbol handles, the language set, and the
// unified node-kind tag.
package types

// FileID indexes into the workspace's discovered file list.
type FileID uint32

// SymbolID indexes into the unified AST's node store.
type SymbolID uint32

// NodeID is an alias of SymbolID used when a reference is structural
// (parent/child/sibling) rather than semantic (symbol resolution).
type NodeID = SymbolID

// SentinelNode marks "no node" in parent/child/sibling links.
const SentinelNode NodeID = 0xFFFFFFFF

// Language enumerates the source languages codelens understands.
type Language uint8

const (
	LangUnknown Language = iota
	LangRust
	LangTypeScript
	LangJavaScript
	LangPython
	LangC
	LangCpp
	LangKotlin
)

func (l Language) String() string {
	switch l {
	case LangRust:
		return "rust"
	case LangTypeScript:
		return "typescript"
	case LangJavaScript:
		return "javascript"
	case LangPython:
		return "python"
	case LangC:
		return "c"
	case LangCpp:
		return "cpp"
	case LangKotlin:
		return "kotlin"
	default:
		return "unknown"
	}
}

// NodeKind is the tagged-union discriminant for UnifiedAstNode.
type NodeKind uint8

const (
	KindFunction NodeKind = iota
	KindClass
	KindVariable
	KindImport
	KindExpression
	KindStatement
	KindType
	KindModule
	KindMacro
)

func (k NodeKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindVariable:
		return "variable"
	case KindImport:
		return "import"
	case KindExpression:
		return "expression"
	case KindStatement:
		return "statement"
	case KindType:
		return "type"
	case KindModule:
		return "module"
	case KindMacro:
		return "macro"
	default:
		return "unknown"
	}
}

// Subkind refines a NodeKind, e.g. Function{Regular,Method,Async}.
type Subkind uint8

const (
	SubNone Subkind = iota

	// Function subkinds.
	SubFunctionRegular
	SubFunctionMethod
	SubFunctionAsync
	SubFunctionGenerator
	SubFunctionClosure

	// Statement subkinds.
	SubStatementIf
	SubStatementElse
	SubStatementFor
	SubStatementWhile
	SubStatementSwitchCase
	SubStatementReturn
	SubStatementTry
	SubStatementCatch
	SubStatementGoto
	SubStatementBreakLabel
	SubStatementOther

	// Expression subkinds.
	SubExpressionCall
	SubExpressionBinary
	SubExpressionLogical  // && or ||
	SubExpressionTernary  // a ? b : c
	SubExpressionLambda
	SubExpressionOther

	// Class subkinds.
	SubClassRegular
	SubClassInterface
	SubClassTrait
	SubClassEnum
)

// Flags is an orthogonal bitset attached to every node.
type Flags uint8

const (
	FlagPublic Flags = 1 << iota
	FlagAsync
	FlagStatic
	FlagGeneric
	FlagExported
	FlagTest
	FlagGenerated
	FlagUnsafe
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// SourceRange is a half-open byte range [Lo, Hi) into the source file.
type SourceRange struct {
	Lo uint32
	Hi uint32
}

func (r SourceRange) Len() int { return int(r.Hi) - int(r.Lo) }

// ReferenceKind classifies a ReferenceEdge for the dead-code analyzer.
type ReferenceKind uint8

const (
	RefCall ReferenceKind = iota
	RefType
	RefImport
	RefDynamicDispatch
	RefFFI
)

// CloneType classifies a CloneGroup.
type CloneType uint8

const (
	CloneType1Exact CloneType = iota + 1
	CloneType2Renamed
	CloneType3Gapped
	CloneType4Semantic
)

func (c CloneType) String() string {
	switch c {
	case CloneType1Exact:
		return "Type-1"
	case CloneType2Renamed:
		return "Type-2"
	case CloneType3Gapped:
		return "Type-3"
	case CloneType4Semantic:
		return "Type-4"
	default:
		return "unknown"
	}
}

// SATDCategory classifies a self-admitted technical debt marker.
type SATDCategory uint8

const (
	SATDDesign SATDCategory = iota
	SATDDefect
	SATDRequirement
	SATDImplementation
	SATDTest
	SATDDocumentation
)

func (c SATDCategory) String() string {
	switch c {
	case SATDDesign:
		return "design"
	case SATDDefect:
		return "defect"
	case SATDRequirement:
		return "requirement"
	case SATDImplementation:
		return "implementation"
	case SATDTest:
		return "test"
	case SATDDocumentation:
		return "documentation"
	default:
		return "unknown"
	}
}

// Severity ranks a SATD item or defect finding.
type Severity uint8

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Confidence ranks how sure the dead-code analyzer is about a verdict.
type Confidence uint8

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	default:
		return "unknown"
	}
}

// BigOClass is the estimated asymptotic complexity bucket for a function.
type BigOClass uint8

const (
	BigOConstant BigOClass = iota
	BigOLogN
	BigOLinear
	BigOLinearithmic
	BigOQuadratic
	BigOUnknown
)

func (b BigOClass) String() string {
	switch b {
	case BigOConstant:
		return "O(1)"
	case BigOLogN:
		return "O(log n)"
	case BigOLinear:
		return "O(n)"
	case BigOLinearithmic:
		return "O(n log n)"
	case BigOQuadratic:
		return "O(n²)"
	default:
		return "unknown"
	}
}

// ArtifactKind classifies an emitted Artifact.
type ArtifactKind uint8

const (
	ArtifactMermaid ArtifactKind = iota
	ArtifactJSON
	ArtifactMarkdown
	ArtifactSarif
	ArtifactTemplate
)
