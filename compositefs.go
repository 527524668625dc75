//go:build !tinygo

package sonar

import (
	"fmt"
	"html/template"
	"io/fs"
)

// CompositeFS layers file systems.  Later layers shadow earlier ones.
type CompositeFS struct {
	fileSystems []fs.FS
}

func NewCompositeFS() *CompositeFS {
	return &CompositeFS{}
}

func (c *CompositeFS) AddFS(fsys fs.FS) {
	c.fileSystems = append(c.fileSystems, fsys)
}

func (c *CompositeFS) Open(name string) (fs.File, error) {

	// Newest (last added) FS first; first FS with a matching file wins

	for i := len(c.fileSystems) - 1; i >= 0; i-- {
		if file, err := c.fileSystems[i].Open(name); err == nil {
			return file, nil
		}
	}

	return nil, fs.ErrNotExist
}

// ParseFS builds a template set from files matching pattern in each layer,
// oldest to newest, so a newer layer's template replaces an older one of
// the same name.  Layers with no match are skipped.
func (c *CompositeFS) ParseFS(pattern string) (*template.Template, error) {
	mainTmpl := template.New("main")
	found := false

	for _, fsys := range c.fileSystems {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			continue
		}
		if _, err := mainTmpl.ParseFS(fsys, pattern); err != nil {
			return nil, err
		}
		found = true
	}

	if !found {
		return nil, fmt.Errorf("no templates match %q", pattern)
	}
	return mainTmpl, nil
}
