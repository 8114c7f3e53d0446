package tags

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	got := Normalize([]string{"hello", "goodbye"})
	want := []string{"hello", "goodbye"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
}

func TestNormalize_Dedupes(t *testing.T) {
	got := Normalize([]string{"Music", "music", " music ", "news"})
	want := []string{"Music", "news"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
}

func TestNormalize_DropsEmpty(t *testing.T) {
	if got := Normalize([]string{"", "   ", "\t"}); got != nil {
		t.Fatalf("Expected nil, got %v", got)
	}
}

func TestNormalize_Truncates(t *testing.T) {
	long := strings.Repeat("a", 80)
	got := Normalize([]string{long})
	if len(got) != 1 || len(got[0]) != maxTagLength {
		t.Fatalf("Expected a single %d-char tag, got %v", maxTagLength, got)
	}
}
