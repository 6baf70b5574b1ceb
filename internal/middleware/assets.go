package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"sync"
)

// AssetsWithCache serves files from fsys with Cache-Control, Vary and a
// content-hash ETag computed on first request. devMode disables caching.
func AssetsWithCache(fsys fs.FS, devMode bool) http.Handler {
	var etags sync.Map
	files := http.FileServerFS(fsys)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Accept-Encoding")
		if devMode {
			w.Header().Set("Cache-Control", "no-cache")
			files.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=604800, stale-while-revalidate=86400")

		name := strings.TrimPrefix(r.URL.Path, "/")
		et, ok := etags.Load(name)
		if !ok {
			if sum, err := fileETag(fsys, name); err == nil {
				et, _ = etags.LoadOrStore(name, sum)
			}
		}
		if s, _ := et.(string); s != "" {
			w.Header().Set("ETag", s)
			if inm := r.Header.Get("If-None-Match"); inm == s {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

func fileETag(fsys fs.FS, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)[:16]) + `"`, nil
}
