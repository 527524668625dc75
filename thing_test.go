package sonar

import (
	"testing"
)

func TestEmptyId(t *testing.T) {
	defer func() { _ = recover() }()
	// should panic with empty Id
	NewThing("", "foo", "bar")
	t.Errorf("did not panic")
}

func TestEmptyModel(t *testing.T) {
	defer func() { _ = recover() }()
	// should panic with empty Model
	NewThing("foo", "", "bar")
	t.Errorf("did not panic")
}

func TestEmptyName(t *testing.T) {
	defer func() { _ = recover() }()
	// should panic with empty Name
	NewThing("foo", "bar", "")
	t.Errorf("did not panic")
}

func TestValidId(t *testing.T) {
	for id, want := range map[string]bool{
		"esp32_1":   true,
		"Ranger_42": true,
		"":          false,
		"a-b":       false,
		"a b":       false,
		`a"b`:       false,
		"añb":       false,
	} {
		if got := ValidId(id); got != want {
			t.Errorf("ValidId(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestString(t *testing.T) {
	thing := NewThing("esp32_1", "ranger", "garage")
	if got := thing.String(); got != "[Id: esp32_1, Model: ranger, Name: garage]" {
		t.Error("unexpected String():", got)
	}
}
