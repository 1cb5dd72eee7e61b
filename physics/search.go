package physics

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/simlab/jointsim/referenceframe"
)

type searchPath struct {
	name string
	fsys fs.FS
}

// SetAdditionalSearchPath registers a directory that LoadURDF searches for assets. Paths are
// searched in the order they were registered.
func (c *Client) SetAdditionalSearchPath(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return errors.Wrap(err, "cannot add search path")
	}
	if !info.IsDir() {
		return errors.Errorf("cannot add search path: %q is not a directory", dir)
	}
	return c.AddSearchFS(dir, os.DirFS(dir))
}

// AddSearchFS registers a filesystem that LoadURDF searches for assets. The name is only used
// in logs and errors.
func (c *Client) AddSearchFS(name string, fsys fs.FS) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return ErrNotConnected
	}
	c.searchPaths = append(c.searchPaths, searchPath{name: name, fsys: fsys})
	c.logger.Debugw("added search path", "path", name)
	return nil
}

// loadModel finds and parses an asset. A name that exists as given on disk wins, then each
// registered search path in order. The caller must hold the lock.
func (c *Client) loadModel(name string) (*referenceframe.Model, error) {
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		c.logger.Debugw("loading asset from disk", "path", name)
		return referenceframe.ParseURDFFile(name, "")
	}

	clean := path.Clean(filepath.ToSlash(name))
	searched := make([]string, 0, len(c.searchPaths))
	if fs.ValidPath(clean) {
		for _, sp := range c.searchPaths {
			searched = append(searched, sp.name)
			info, err := fs.Stat(sp.fsys, clean)
			if err == nil && !info.IsDir() {
				c.logger.Debugw("loading asset", "path", clean, "search_path", sp.name)
				return referenceframe.ParseURDFFS(sp.fsys, clean, "")
			}
		}
	}
	return nil, newAssetNotFoundError(name, searched)
}
