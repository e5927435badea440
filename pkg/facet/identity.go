package facet

import (
	"encoding/binary"
	"hash/maphash"
	"reflect"
)

var hashSeed = maphash.MakeSeed()

// sameReference reports whether a and b denote the same value: reference
// kinds compare by address, comparable values with ==.
func sameReference(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if isReferenceKind(va.Kind()) {
		return va.Pointer() == vb.Pointer()
	}
	if va.Type().Comparable() {
		return safeEqual(a, b)
	}
	return false
}

// safeEqual guards against comparable types holding incomparable dynamic values
func safeEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

func isReferenceKind(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Slice:
		return true
	}
	return false
}

// Hasher is implemented by fallback objects that supply their own hash
type Hasher interface {
	HashCode() uint64
}

// referenceHash hashes v consistently with sameReference
func referenceHash(v any) uint64 {
	if v == nil {
		return 0
	}
	if h, ok := v.(Hasher); ok {
		return h.HashCode()
	}

	rv := reflect.ValueOf(v)
	var mh maphash.Hash
	mh.SetSeed(hashSeed)
	mh.WriteString(rv.Type().String())

	if isReferenceKind(rv.Kind()) {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(rv.Pointer()))
		mh.Write(buf[:])
		return mh.Sum64()
	}
	if rv.Type().Comparable() {
		if h, ok := comparableHash(v); ok {
			return h ^ mh.Sum64()
		}
	}
	return mh.Sum64()
}

func comparableHash(v any) (h uint64, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return maphash.Comparable(hashSeed, v), true
}
