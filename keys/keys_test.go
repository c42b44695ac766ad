package keys

import "testing"

func TestNewEmptyIsZero(t *testing.T) {
	k := New("")
	if !k.IsZero() {
		t.Error("empty key is not zero")
	}
	if k != (Key{}) {
		t.Error("empty key differs from the zero value")
	}
	if k.Hash() != 0 {
		t.Errorf("empty key hash = %d, want 0", k.Hash())
	}
}

func TestEqualStringsCompareEqual(t *testing.T) {
	a := New("player")
	b := New("player")
	if a != b {
		t.Error("identical strings produced unequal keys")
	}
	if a.Hash() != b.Hash() {
		t.Error("identical strings produced unequal hashes")
	}
}

func TestDistinctStringsDiffer(t *testing.T) {
	if New("walk") == New("run") {
		t.Error("distinct strings compare equal")
	}
}

func TestStringRoundtrip(t *testing.T) {
	if got := New("explosion").String(); got != "explosion" {
		t.Errorf("String() = %q, want explosion", got)
	}
}

func TestNonEmptyHashIsSet(t *testing.T) {
	if New("a").Hash() == 0 {
		t.Error("non-empty key has a zero hash")
	}
}

func TestKeysAsMapKeys(t *testing.T) {
	m := map[Key]int{
		New("idle"): 1,
		New("walk"): 2,
	}
	if m[New("walk")] != 2 {
		t.Error("map lookup by a rebuilt key failed")
	}
	if _, ok := m[New("jump")]; ok {
		t.Error("missing key found in map")
	}
}
