package environ_test

import (
	"slices"
	"testing"

	"github.com/JaimeStill/proctor/pkg/environ"
)

func TestString(t *testing.T) {
	t.Setenv("ENVIRON_STRING", "value")

	got := "default"
	environ.String("ENVIRON_STRING", &got)
	if got != "value" {
		t.Errorf("got %q, want value", got)
	}

	got = "default"
	environ.String("ENVIRON_UNSET", &got)
	if got != "default" {
		t.Errorf("unset variable changed value to %q", got)
	}

	environ.String("", &got)
	if got != "default" {
		t.Errorf("empty name changed value to %q", got)
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"valid", "42", 42},
		{"invalid keeps default", "forty", 7},
		{"negative", "-3", -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENVIRON_INT", tt.value)
			got := 7
			environ.Int("ENVIRON_INT", &got)
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBool(t *testing.T) {
	t.Setenv("ENVIRON_BOOL", "true")
	var got bool
	environ.Bool("ENVIRON_BOOL", &got)
	if !got {
		t.Error("expected true")
	}

	t.Setenv("ENVIRON_BOOL", "maybe")
	environ.Bool("ENVIRON_BOOL", &got)
	if !got {
		t.Error("invalid value should not change destination")
	}
}

func TestList(t *testing.T) {
	t.Setenv("ENVIRON_LIST", " phone, book ,, laptop ")
	var got []string
	environ.List("ENVIRON_LIST", &got)

	want := []string{"phone", "book", "laptop"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
