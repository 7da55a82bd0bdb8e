package slug

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Billy Collins":         "billy-collins",
		"e.e. cummings":         "e-e-cummings",
		"Seamus O'Brien":        "seamus-obrien",
		"  Mary   Oliver  ":     "mary-oliver",
		"W._H._Auden":           "w-h-auden",
		"Wisława Szymborska":    "wisława-szymborska",
		"Jane Kenyon (1947-95)": "jane-kenyon-1947-95",
		"--already-a-slug--":    "already-a-slug",
		"!!!":                   "",
		"":                      "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSlugify_NormalisesComposition(t *testing.T) {
	composed := "Jos\u00e9 Mart\u00ed"
	decomposed := "Jose\u0301 Marti\u0301"
	if Slugify(composed) != Slugify(decomposed) {
		t.Errorf("composed %q != decomposed %q", Slugify(composed), Slugify(decomposed))
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	inputs := []string{
		"Billy Collins", "e.e. cummings", "A. R. Ammons", "Li-Young Lee",
		"Wisława Szymborska", "İlhan Berk", "José", "x__y..z--w", "Ünal 42",
	}
	for _, in := range inputs {
		once := Slugify(in)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"billy-collins":  "Billy Collins",
		"e-e-cummings":   "E E Cummings",
		"mary":           "Mary",
		"szymborska-ówa": "Szymborska Ówa",
		"":               "",
	}
	for in, want := range cases {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLetter(t *testing.T) {
	if l, ok := Letter("billy collins"); !ok || l != "B" {
		t.Errorf("Letter(billy collins) = %q, %v", l, ok)
	}
	if _, ok := Letter("Ørjan Nilsen"); ok {
		t.Error("non-ASCII initial should not bucket")
	}
	if _, ok := Letter("50 Cent"); ok {
		t.Error("digit initial should not bucket")
	}
}
