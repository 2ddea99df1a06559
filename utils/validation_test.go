package utils

import "testing"

func TestValidatePhone(t *testing.T) {
	cases := map[string]bool{
		"+225 07 08 09 10":  true,
		"+1 (555) 010-2030": true,
		"5550102030":        true,
		"0708091011":        false,
		"+12":               false,
		"not a phone":       false,
		"":                  false,
	}
	for phone, want := range cases {
		if got := ValidatePhone(phone); got != want {
			t.Fatalf("ValidatePhone(%q) = %v, want %v", phone, got, want)
		}
	}
}

func TestValidateSlug(t *testing.T) {
	cases := map[string]bool{
		"salon-elegance": true,
		"nao2":           true,
		"Salon":          false,
		"salon--x":       false,
		"-salon":         false,
		"salon/../x":     false,
		"":               false,
	}
	for slug, want := range cases {
		if got := ValidateSlug(slug); got != want {
			t.Fatalf("ValidateSlug(%q) = %v, want %v", slug, got, want)
		}
	}
}
