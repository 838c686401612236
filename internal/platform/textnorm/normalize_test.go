package textnorm

import "testing"

func TestCanonical(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Arsenal", "arsenal"},
		{"spaces collapse", "  Manchester   United ", "manchester-united"},
		{"diacritics", "Atlético Madrid", "atletico-madrid"},
		{"nordic letters", "Brøndby IF", "brondby-if"},
		{"german sharp s", "Preußen Münster", "preussen-munster"},
		{"polish", "Łódź", "lodz"},
		{"punctuation runs", "St. Pauli / II", "st-pauli-ii"},
		{"mixed separators", "Inter--Milan__1908", "inter-milan-1908"},
		{"leading trailing junk", "***Ajax***", "ajax"},
		{"digits kept", "Schalke 04", "schalke-04"},
		{"empty", "", ""},
		{"only junk", "###", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Canonical(tc.in); got != tc.want {
				t.Fatalf("Canonical(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCanonicalIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Manchester United",
		"Atlético Madrid",
		"Брондбю", // non-latin script drops entirely, and stays dropped
		"real-madrid",
		"  FC   Köln  ",
	}

	for _, in := range inputs {
		once := Canonical(in)
		if twice := Canonical(once); twice != once {
			t.Fatalf("Canonical not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()

	if !Equal("Atlético Madrid", "atletico   madrid") {
		t.Fatal("expected canonical equality across diacritics and spacing")
	}
	if Equal("Arsenal", "Chelsea") {
		t.Fatal("distinct teams must not compare equal")
	}
}
