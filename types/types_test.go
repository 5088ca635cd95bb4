package types

import "testing"

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"identical singletons", UniformInt32, UniformInt32, true},
		{"structurally equal atomics", UniformInt32, &AtomicType{Kind: KindInt32, Variab: Uniform}, true},
		{"variability differs", UniformInt32, VaryingInt32, false},
		{"constness differs", UniformFloat, UniformFloat.GetAsConstType(), false},
		{"equal arrays", &ArrayType{Elem: UniformInt32, Count: 4}, &ArrayType{Elem: UniformInt32, Count: 4}, true},
		{"array size differs", &ArrayType{Elem: UniformInt32, Count: 4}, &ArrayType{Elem: UniformInt32, Count: 5}, false},
		{"equal references", &ReferenceType{Target: VaryingFloat}, &ReferenceType{Target: VaryingFloat}, true},
		{"nil never equal", UniformInt32, nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(tc.a, tc.b); got != tc.want {
				t.Errorf("Equal = %v; want %v", got, tc.want)
			}
		})
	}
}

func TestVariabilityFlips(t *testing.T) {
	if got := UniformInt32.GetAsVaryingType(); !Equal(got, VaryingInt32) {
		t.Errorf("GetAsVaryingType() = %v", got)
	}
	if got := VaryingDouble.GetAsUniformType(); !Equal(got, UniformDouble) {
		t.Errorf("GetAsUniformType() = %v", got)
	}
	if got := UniformFloat.GetAsConstType().GetAsNonConstType(); !Equal(got, UniformFloat) {
		t.Errorf("const round trip = %v", got)
	}
}

func TestSizedArray(t *testing.T) {
	unsized := &ArrayType{Elem: VaryingFloat, Count: 0}
	sized := unsized.GetSizedArray(6)
	if sized.ElementCount() != 6 || !Equal(sized.BaseType(), VaryingFloat) {
		t.Errorf("GetSizedArray(6) = %v", sized)
	}
	if unsized.ElementCount() != 0 {
		t.Error("sizing mutated the original type")
	}
}

func TestReferenceTarget(t *testing.T) {
	ref := &ReferenceType{Target: UniformInt64}
	if got := ReferenceTarget(ref); !Equal(got, UniformInt64) {
		t.Errorf("ReferenceTarget(ref) = %v", got)
	}
	if got := ReferenceTarget(UniformInt64); !Equal(got, UniformInt64) {
		t.Errorf("ReferenceTarget(non-ref) = %v", got)
	}
}
