package value

import (
	"reflect"

	"github.com/shopspring/decimal"
)

// Equal reports whether a and b hold the same data.
// Decimals compare by numeric value; records compare field by field.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindAbsent:
		return true
	case KindPrimitive:
		if a.prim != b.prim {
			return false
		}
		da, aok := a.raw.(decimal.Decimal)
		db, bok := b.raw.(decimal.Decimal)
		if aok || bok {
			return aok && bok && da.Equal(db)
		}
		return rawEqual(a.raw, b.raw)
	case KindRecord:
		return a.rec.Equal(b.rec)
	case KindReference:
		return a.ref == b.ref
	case KindChoice:
		return a.choice == b.choice && Equal(a.Unwrap(), b.Unwrap())
	}
	return false
}

// Equal reports whether r and o have the same type and fields.
func (r *Record) Equal(o *Record) bool {
	if r == o {
		return true
	}
	if r == nil || o == nil {
		return false
	}
	if r.typeName != o.typeName || len(r.fields) != len(o.fields) {
		return false
	}
	for i := range r.fields {
		fa, fb := r.fields[i], o.fields[i]
		if fa.name != fb.name || fa.list != fb.list || len(fa.values) != len(fb.values) {
			return false
		}
		for j := range fa.values {
			if !Equal(fa.values[j], fb.values[j]) {
				return false
			}
		}
	}
	return true
}

func rawEqual(a, b any) bool {
	switch a.(type) {
	case string, bool, int64, nil:
		return a == b
	default:
		return reflect.DeepEqual(a, b)
	}
}
