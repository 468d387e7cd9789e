package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "name without params",
			key:  Key{Name: "stats"},
			want: "nasa:stats",
		},
		{
			name: "empty params",
			key:  NewKey("mars-rovers", url.Values{}),
			want: "nasa:mars-rovers",
		},
		{
			name: "single param",
			key:  NewKey("apod", url.Values{"date": []string{"2024-01-01"}}),
			want: "nasa:apod:date=2024-01-01",
		},
		{
			name: "params sorted",
			key: NewKey("neo", url.Values{
				"start_date": []string{"2024-01-01"},
				"end_date":   []string{"2024-01-07"},
			}),
			want: "nasa:neo:end_date=2024-01-07:start_date=2024-01-01",
		},
		{
			name: "values escaped",
			key:  NewKey("search", url.Values{"q": []string{"apollo 11:moon"}}),
			want: "nasa:search:q=apollo+11%3Amoon",
		},
		{
			name: "multiple values keep order",
			key:  NewKey("search", url.Values{"q": []string{"b", "a"}}),
			want: "nasa:search:q=b,a",
		},
		{
			name: "name escaped",
			key:  Key{Name: "a:b=x"},
			want: "nasa:a%3Ab%3Dx",
		},
		{
			name: "slashes trimmed from name",
			key:  Key{Name: "/health/"},
			want: "nasa:health",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("Key.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestKey_Determinism ensures value-equal bags always produce the same key.
func TestKey_Determinism(t *testing.T) {
	build := func() Key {
		return NewKey("mars-photos", url.Values{
			"rover":  []string{"curiosity"},
			"sol":    []string{"1000"},
			"camera": []string{"FHAZ"},
			"page":   []string{"1"},
		})
	}

	first := build().String()
	for i := 0; i < 20; i++ {
		k := build()
		if got := k.String(); got != first {
			t.Errorf("iteration %d: %v, want %v (not deterministic)", i, got, first)
		}
		if !k.Equal(build()) {
			t.Errorf("iteration %d: Equal() = false for value-equal keys", i)
		}
	}
}

// TestKey_Injectivity ensures bags differing in one field never collide.
func TestKey_Injectivity(t *testing.T) {
	keys := []Key{
		NewKey("apod", nil),
		NewKey("apod", url.Values{"date": []string{"2024-01-01"}}),
		NewKey("apod", url.Values{"date": []string{"2024-01-02"}}),
		NewKey("apod", url.Values{"start_date": []string{"2024-01-01"}}),
		NewKey("apod", url.Values{"count": []string{"5"}}),
		NewKey("apod", url.Values{"count": []string{"5"}, "thumbs": []string{"true"}}),
		NewKey("neo", url.Values{"start_date": []string{"2024-01-01"}}),
		NewKey("search", url.Values{"q": []string{"a,b"}}),
		NewKey("search", url.Values{"q": []string{"a", "b"}}),
		NewKey("search", url.Values{"q": []string{"a=b"}}),
		NewKey("search", url.Values{"q": []string{"a"}, "b": []string{""}}),
		NewKey("search", url.Values{"q": []string{"a:b="}}),
		NewKey("mars-photos", url.Values{"sol": []string{"0"}}),
		NewKey("mars-photos", url.Values{}),
		Key{Name: "a:b=x"},
		NewKey("a", url.Values{"b": []string{"x"}}),
	}

	seen := make(map[string]int)
	for i, k := range keys {
		s := k.String()
		if j, ok := seen[s]; ok {
			t.Errorf("keys %d and %d collide on %q", j, i, s)
		}
		seen[s] = i
	}

	// nil and empty params are the same bag.
	if !keys[0].Equal(NewKey("apod", url.Values{})) {
		t.Error("nil and empty params should produce equal keys")
	}
	if keys[12].Equal(keys[13]) {
		t.Error("sol=0 must differ from no sol")
	}
	if keys[14].Equal(keys[15]) {
		t.Error("separators in the name must not mimic params")
	}
}
