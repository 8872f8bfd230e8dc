package identity_test

import (
	"testing"

	"github.com/saqr-hq/saqr-workflows/internal/identity"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase passthrough", "shopify", "shopify"},
		{"uppercase folded", "Shopify", "shopify"},
		{"punctuation stripped", "Shopify Inc.", "shopifyinc"},
		{"hyphens stripped", "shopify-inc", "shopifyinc"},
		{"digits kept", "Store24 LLC", "store24llc"},
		{"spaces stripped", "saudi post", "saudipost"},
		{"arabic removed entirely", "سلة", ""},
		{"mixed script keeps ascii", "Salla سلة", "salla"},
		{"empty", "", ""},
		{"only punctuation", "---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := identity.Normalize(tt.input)
			if result != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Shopify Inc.", "salla", "TechFlow-2024", "", "عربي", "A B C"}
	for _, input := range inputs {
		once := identity.Normalize(input)
		twice := identity.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first=%q second=%q", input, once, twice)
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected bool
	}{
		{"case and punctuation insensitive", "Shopify Inc.", "shopify-inc", true},
		{"identical", "saqr", "saqr", true},
		{"different entities", "shopify", "salla", false},
		{"substring is not a match", "shopify", "shopifyinc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := identity.Match(tt.a, tt.b); result != tt.expected {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestValidSlug(t *testing.T) {
	tests := []struct {
		name     string
		slug     string
		expected bool
	}{
		{"simple slug", "saqr", true},
		{"digits allowed", "store24", true},
		{"minimum length", "abc", true},
		{"too short", "ab", false},
		{"uppercase rejected", "Saqr", false},
		{"hyphen rejected", "my-store", false},
		{"space rejected", "my store", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := identity.ValidSlug(tt.slug); result != tt.expected {
				t.Errorf("ValidSlug(%q) = %v, want %v", tt.slug, result, tt.expected)
			}
		})
	}
}
