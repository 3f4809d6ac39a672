package cache

import "testing"

func TestKey_Deterministic(t *testing.T) {
	a := Key("q1", "hash-a", "gpt-4")
	b := Key("q1", "hash-a", "gpt-4")
	if a != b {
		t.Errorf("same triple produced different keys: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(a))
	}
}

func TestKey_DistinctPerField(t *testing.T) {
	base := Key("q1", "hash-a", "gpt-4")
	tests := []struct {
		name string
		key  string
	}{
		{"question changes key", Key("q2", "hash-a", "gpt-4")},
		{"transcript hash changes key", Key("q1", "hash-b", "gpt-4")},
		{"model version changes key", Key("q1", "hash-a", "gpt-4.1")},
	}
	for _, tt := range tests {
		if tt.key == base {
			t.Errorf("%s: key did not change", tt.name)
		}
	}
}

func TestKey_NoConcatenationCollision(t *testing.T) {
	// "ab"+"c" must not collide with "a"+"bc" across field boundaries.
	if Key("ab", "c", "m") == Key("a", "bc", "m") {
		t.Error("field boundary collision")
	}
}

func TestHashContent(t *testing.T) {
	a := HashContent([]string{"first quote", "second quote"})
	b := HashContent([]string{"first quote", "second quote"})
	if a != b {
		t.Error("same content produced different hashes")
	}

	edited := HashContent([]string{"first quote", "second quote."})
	if edited == a {
		t.Error("edit did not change the content hash")
	}

	reordered := HashContent([]string{"second quote", "first quote"})
	if reordered == a {
		t.Error("reorder did not change the content hash")
	}
}
