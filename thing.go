package sonar

import (
	"context"
)

// Thinger is anything the Runner can bring up and run: a ranger device or
// the hub collecting from ranger devices.
type Thinger interface {
	Id() string
	Model() string
	Name() string
	String() string
	// Setup prepares the thing's hardware and links.  It may block.
	Setup(context.Context) error
	// Run runs the thing until ctx is done.
	Run(context.Context) error
}

// Thing is the identity shared by all things.  Embed it.
type Thing struct {
	id    string
	model string
	name  string
}

func NewThing(id, model, name string) Thing {
	if !ValidId(id) || !ValidId(model) || !ValidId(name) {
		panic("something invalid: id = \"" + id + "\", model = \"" +
			model + "\", name = \"" + name + "\"")
	}
	return Thing{id: id, model: model, name: name}
}

func (t *Thing) Id() string    { return t.id }
func (t *Thing) Model() string { return t.model }
func (t *Thing) Name() string  { return t.name }

func (t *Thing) String() string {
	return "[Id: " + t.id + ", Model: " + t.model + ", Name: " + t.name + "]"
}

// A valid ID is a non-empty string with only [a-z], [A-Z], [0-9], or
// underscore characters.  Valid IDs are safe to place in JSON strings, URL
// paths and HTML ids without escaping.
func ValidId(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') &&
			(r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') &&
			(r != '_') {
			return false
		}
	}
	return len(s) > 0
}
