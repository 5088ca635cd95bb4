package codegen

import (
	"spmdc/report"
	"spmdc/types"

	lltypes "github.com/llir/llvm/ir/types"
)

// convScalarType returns the LLVM type of the scalar flavor of an atomic
// kind.
func convScalarType(kind types.BaseKind) lltypes.Type {
	switch kind {
	case types.KindBool:
		return lltypes.I1
	case types.KindInt8, types.KindUInt8:
		return lltypes.I8
	case types.KindInt16, types.KindUInt16:
		return lltypes.I16
	case types.KindInt32, types.KindUInt32:
		return lltypes.I32
	case types.KindInt64, types.KindUInt64:
		return lltypes.I64
	case types.KindFloat:
		return lltypes.Float
	case types.KindDouble:
		return lltypes.Double
	}

	report.ICE("unexpected atomic kind %d in convScalarType()", kind)
	return nil
}

// convType converts a front-end type to its LLVM representation for the
// generator's target.  Varying atomic values become vectors of the gang
// width.
func (g *Generator) convType(typ types.Type) lltypes.Type {
	switch v := typ.(type) {
	case *types.AtomicType:
		scalar := convScalarType(v.Kind)
		if v.IsUniformType() {
			return scalar
		}
		return lltypes.NewVector(uint64(g.cfg.Target.VectorWidth), scalar)

	case *types.EnumType:
		if v.IsUniformType() {
			return lltypes.I32
		}
		return lltypes.NewVector(uint64(g.cfg.Target.VectorWidth), lltypes.I32)

	case *types.ArrayType:
		return lltypes.NewArray(uint64(v.Count), g.convType(v.Elem))

	case *types.VectorType:
		if v.Elem.IsUniformType() {
			return lltypes.NewVector(uint64(v.Count), convScalarType(v.Elem.Kind))
		}
		return lltypes.NewArray(uint64(v.Count), g.convType(v.Elem))

	case *types.StructType:
		fields := make([]lltypes.Type, len(v.MemberTypes))
		for i, mt := range v.MemberTypes {
			fields[i] = g.convType(mt)
		}
		return lltypes.NewStruct(fields...)

	case *types.ReferenceType:
		return lltypes.NewPointer(g.convType(v.Target))
	}

	report.ICE("unexpected type %T in convType()", typ)
	return nil
}
