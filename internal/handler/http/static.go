package http

import (
	"net/http"
	"os"
	"path"
	"strings"
)

// noListingFileSystem serves files but answers directory requests with
// not-found unless the directory carries an index.html.
type noListingFileSystem struct {
	fs http.FileSystem
}

func (nfs noListingFileSystem) Open(name string) (http.File, error) {
	f, err := nfs.fs.Open(name)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.IsDir() {
		index, err := nfs.fs.Open(path.Join(name, "index.html"))
		if err != nil {
			f.Close()
			return nil, os.ErrNotExist
		}
		index.Close()
	}

	return f, nil
}

// staticHandler serves dir under prefix without directory listings.
func staticHandler(prefix, dir string) http.Handler {
	return http.StripPrefix(strings.TrimSuffix(prefix, "/"), http.FileServer(noListingFileSystem{http.Dir(dir)}))
}
