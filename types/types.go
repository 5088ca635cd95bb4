package types

import (
	"fmt"
	"strings"
)

// Variability says whether a value is provably identical across all lanes of
// the gang (uniform) or potentially distinct per lane (varying).
type Variability int

const (
	Uniform Variability = iota
	Varying
)

func (v Variability) String() string {
	if v == Uniform {
		return "uniform"
	}
	return "varying"
}

// BaseKind enumerates the atomic scalar kinds.
type BaseKind int

const (
	KindBool BaseKind = iota
	KindInt8
	KindUInt8
	KindInt16
	KindUInt16
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindFloat
	KindDouble
)

var kindNames = [...]string{
	"bool", "int8", "unsigned int8", "int16", "unsigned int16",
	"int32", "unsigned int32", "int64", "unsigned int64", "float", "double",
}

func (k BaseKind) String() string {
	return kindNames[k]
}

// -----------------------------------------------------------------------------

// Type is the interface implemented by all types the statement core can
// encounter.
type Type interface {
	// IsUniformType returns whether the type is uniform over the gang.
	IsUniformType() bool

	// IsBoolType returns whether the type is boolean-valued.
	IsBoolType() bool

	// IsNumericType returns whether the type is integer or floating point.
	IsNumericType() bool

	// IsConstType returns whether the type is const-qualified.
	IsConstType() bool

	// String returns the source-level spelling of the type.
	String() string
}

// IsVaryingType returns whether t is varying.  A nil type is neither.
func IsVaryingType(t Type) bool {
	return t != nil && !t.IsUniformType()
}

// -----------------------------------------------------------------------------

// AtomicType is a scalar type: a base kind plus variability and constness.
type AtomicType struct {
	Kind    BaseKind
	Variab  Variability
	IsConst bool
}

// Canonical unqualified atomic types.  The statement passes compare types
// with Equal(), which compares structurally, so a copy of one of these
// compares equal to it.
var (
	UniformBool   = &AtomicType{Kind: KindBool, Variab: Uniform}
	VaryingBool   = &AtomicType{Kind: KindBool, Variab: Varying}
	UniformInt8   = &AtomicType{Kind: KindInt8, Variab: Uniform}
	VaryingInt8   = &AtomicType{Kind: KindInt8, Variab: Varying}
	UniformUInt8  = &AtomicType{Kind: KindUInt8, Variab: Uniform}
	VaryingUInt8  = &AtomicType{Kind: KindUInt8, Variab: Varying}
	UniformInt16  = &AtomicType{Kind: KindInt16, Variab: Uniform}
	VaryingInt16  = &AtomicType{Kind: KindInt16, Variab: Varying}
	UniformUInt16 = &AtomicType{Kind: KindUInt16, Variab: Uniform}
	VaryingUInt16 = &AtomicType{Kind: KindUInt16, Variab: Varying}
	UniformInt32  = &AtomicType{Kind: KindInt32, Variab: Uniform}
	VaryingInt32  = &AtomicType{Kind: KindInt32, Variab: Varying}
	UniformUInt32 = &AtomicType{Kind: KindUInt32, Variab: Uniform}
	VaryingUInt32 = &AtomicType{Kind: KindUInt32, Variab: Varying}
	UniformInt64  = &AtomicType{Kind: KindInt64, Variab: Uniform}
	VaryingInt64  = &AtomicType{Kind: KindInt64, Variab: Varying}
	UniformUInt64 = &AtomicType{Kind: KindUInt64, Variab: Uniform}
	VaryingUInt64 = &AtomicType{Kind: KindUInt64, Variab: Varying}
	UniformFloat  = &AtomicType{Kind: KindFloat, Variab: Uniform}
	VaryingFloat  = &AtomicType{Kind: KindFloat, Variab: Varying}
	UniformDouble = &AtomicType{Kind: KindDouble, Variab: Uniform}
	VaryingDouble = &AtomicType{Kind: KindDouble, Variab: Varying}
)

func (at *AtomicType) IsUniformType() bool { return at.Variab == Uniform }
func (at *AtomicType) IsBoolType() bool    { return at.Kind == KindBool }
func (at *AtomicType) IsNumericType() bool { return at.Kind != KindBool }
func (at *AtomicType) IsConstType() bool   { return at.IsConst }

// IsIntegerType returns whether the atomic type holds an integer kind.
func (at *AtomicType) IsIntegerType() bool {
	return at.Kind != KindBool && at.Kind != KindFloat && at.Kind != KindDouble
}

// IsUnsignedType returns whether the atomic type holds an unsigned kind.
func (at *AtomicType) IsUnsignedType() bool {
	switch at.Kind {
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return true
	}
	return false
}

// IsFloatType returns whether the atomic type is float or double.
func (at *AtomicType) IsFloatType() bool {
	return at.Kind == KindFloat || at.Kind == KindDouble
}

// BitWidth returns the width of the scalar in bits.
func (at *AtomicType) BitWidth() int {
	switch at.Kind {
	case KindBool:
		return 1
	case KindInt8, KindUInt8:
		return 8
	case KindInt16, KindUInt16:
		return 16
	case KindInt32, KindUInt32, KindFloat:
		return 32
	default:
		return 64
	}
}

// GetAsVariability returns the atomic type with the given variability.
func (at *AtomicType) GetAsVariability(v Variability) *AtomicType {
	if at.Variab == v && !at.IsConst {
		return at
	}
	return &AtomicType{Kind: at.Kind, Variab: v}
}

// GetAsUniformType returns the uniform flavor of the type.
func (at *AtomicType) GetAsUniformType() *AtomicType { return at.GetAsVariability(Uniform) }

// GetAsVaryingType returns the varying flavor of the type.
func (at *AtomicType) GetAsVaryingType() *AtomicType { return at.GetAsVariability(Varying) }

// GetAsNonConstType strips a const qualifier.
func (at *AtomicType) GetAsNonConstType() *AtomicType {
	if !at.IsConst {
		return at
	}
	return &AtomicType{Kind: at.Kind, Variab: at.Variab}
}

// GetAsConstType adds a const qualifier.
func (at *AtomicType) GetAsConstType() *AtomicType {
	if at.IsConst {
		return at
	}
	return &AtomicType{Kind: at.Kind, Variab: at.Variab, IsConst: true}
}

func (at *AtomicType) String() string {
	var sb strings.Builder
	if at.IsConst {
		sb.WriteString("const ")
	}
	sb.WriteString(at.Variab.String())
	sb.WriteByte(' ')
	sb.WriteString(at.Kind.String())
	return sb.String()
}

// -----------------------------------------------------------------------------

// EnumType is a named enumeration.  Enumerators are 32-bit values.
type EnumType struct {
	Name    string
	Variab  Variability
	IsConst bool
}

func (et *EnumType) IsUniformType() bool { return et.Variab == Uniform }
func (et *EnumType) IsBoolType() bool    { return false }
func (et *EnumType) IsNumericType() bool { return true }
func (et *EnumType) IsConstType() bool   { return et.IsConst }

func (et *EnumType) String() string {
	return fmt.Sprintf("%s enum %s", et.Variab, et.Name)
}

// -----------------------------------------------------------------------------

// CollectionType is implemented by the aggregate types whose elements can be
// initialized memberwise from a brace initializer list.
type CollectionType interface {
	Type

	// ElementCount returns the number of elements; 0 for an unsized array.
	ElementCount() int

	// ElementType returns the type of the i'th element.
	ElementType(i int) Type
}

// SequentialType is implemented by collections whose elements share a single
// type and support indexing.
type SequentialType interface {
	CollectionType

	// BaseType returns the shared element type.
	BaseType() Type
}

// ArrayType is a fixed-size (or, before sizing, unsized) array.
type ArrayType struct {
	Elem  Type
	Count int // 0 = unsized
}

func (at *ArrayType) IsUniformType() bool { return true }
func (at *ArrayType) IsBoolType() bool    { return false }
func (at *ArrayType) IsNumericType() bool { return false }
func (at *ArrayType) IsConstType() bool   { return at.Elem.IsConstType() }

func (at *ArrayType) ElementCount() int      { return at.Count }
func (at *ArrayType) ElementType(i int) Type { return at.Elem }
func (at *ArrayType) BaseType() Type         { return at.Elem }

// GetSizedArray returns the same array type with its element count fixed.
func (at *ArrayType) GetSizedArray(n int) *ArrayType {
	return &ArrayType{Elem: at.Elem, Count: n}
}

func (at *ArrayType) String() string {
	if at.Count == 0 {
		return fmt.Sprintf("%s[]", at.Elem)
	}
	return fmt.Sprintf("%s[%d]", at.Elem, at.Count)
}

// VectorType is a short fixed-size value vector over an atomic element type.
type VectorType struct {
	Elem  *AtomicType
	Count int
}

func (vt *VectorType) IsUniformType() bool { return vt.Elem.IsUniformType() }
func (vt *VectorType) IsBoolType() bool    { return false }
func (vt *VectorType) IsNumericType() bool { return false }
func (vt *VectorType) IsConstType() bool   { return vt.Elem.IsConstType() }

func (vt *VectorType) ElementCount() int      { return vt.Count }
func (vt *VectorType) ElementType(i int) Type { return vt.Elem }
func (vt *VectorType) BaseType() Type         { return vt.Elem }

func (vt *VectorType) String() string {
	return fmt.Sprintf("%s<%d>", vt.Elem, vt.Count)
}

// StructType is a named aggregate with per-member types.
type StructType struct {
	Name        string
	MemberNames []string
	MemberTypes []Type
}

func (st *StructType) IsUniformType() bool { return true }
func (st *StructType) IsBoolType() bool    { return false }
func (st *StructType) IsNumericType() bool { return false }
func (st *StructType) IsConstType() bool   { return false }

func (st *StructType) ElementCount() int      { return len(st.MemberTypes) }
func (st *StructType) ElementType(i int) Type { return st.MemberTypes[i] }

// MemberIndex returns the index of the named member, or -1.
func (st *StructType) MemberIndex(name string) int {
	for i, n := range st.MemberNames {
		if n == name {
			return i
		}
	}
	return -1
}

func (st *StructType) String() string {
	return "struct " + st.Name
}

// -----------------------------------------------------------------------------

// ReferenceType is a reference to storage of the target type.
type ReferenceType struct {
	Target Type
}

func (rt *ReferenceType) IsUniformType() bool { return rt.Target.IsUniformType() }
func (rt *ReferenceType) IsBoolType() bool    { return false }
func (rt *ReferenceType) IsNumericType() bool { return false }
func (rt *ReferenceType) IsConstType() bool   { return rt.Target.IsConstType() }

// ReferenceTarget returns the type t refers to, or t itself if it is not a
// reference.
func ReferenceTarget(t Type) Type {
	if rt, ok := t.(*ReferenceType); ok {
		return rt.Target
	}
	return t
}

func (rt *ReferenceType) String() string {
	return fmt.Sprintf("reference<%s>", rt.Target)
}

// -----------------------------------------------------------------------------

// Equal reports whether two types are structurally identical, including
// variability and constness.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return false
	}
	if a == b {
		return true
	}

	switch va := a.(type) {
	case *AtomicType:
		vb, ok := b.(*AtomicType)
		return ok && va.Kind == vb.Kind && va.Variab == vb.Variab && va.IsConst == vb.IsConst
	case *EnumType:
		vb, ok := b.(*EnumType)
		return ok && va.Name == vb.Name && va.Variab == vb.Variab && va.IsConst == vb.IsConst
	case *ArrayType:
		vb, ok := b.(*ArrayType)
		return ok && va.Count == vb.Count && Equal(va.Elem, vb.Elem)
	case *VectorType:
		vb, ok := b.(*VectorType)
		return ok && va.Count == vb.Count && Equal(va.Elem, vb.Elem)
	case *StructType:
		vb, ok := b.(*StructType)
		if !ok || va.Name != vb.Name || len(va.MemberTypes) != len(vb.MemberTypes) {
			return false
		}
		for i := range va.MemberTypes {
			if !Equal(va.MemberTypes[i], vb.MemberTypes[i]) {
				return false
			}
		}
		return true
	case *ReferenceType:
		vb, ok := b.(*ReferenceType)
		return ok && Equal(va.Target, vb.Target)
	}

	return false
}
