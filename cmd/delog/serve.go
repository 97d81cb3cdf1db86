package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"github.com/pkg/browser"

	"github.com/example/delog/internal/engine"
	engineopts "github.com/example/delog/internal/engine/opts"
	"github.com/example/delog/internal/web"
)

func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var (
		port = fs.Int("p", 8080, "port")
		repo = fs.String("repo", ".", "repo root")
		open = fs.Bool("open", false, "open the UI in a browser")
	)
	_ = fs.Parse(args)

	mux := http.NewServeMux()
	web.Register(mux)
	mux.Handle("/api/scan", apiScanHandler(*repo))
	mux.Handle("/api/apply", apiApplyHandler(*repo))

	addr := fmt.Sprintf("127.0.0.1:%d", *port)
	log.Printf("delog serve listening on http://%s (repo=%s)", addr, mustAbs(*repo))
	if *open {
		go func() {
			if err := browser.OpenURL("http://" + addr); err != nil {
				log.Printf("warn: could not open browser: %v", err)
			}
		}()
	}
	log.Fatal(http.ListenAndServe(addr, mux))
}

// apiScanHandler serves read-only scans. Write mode is never enabled here;
// edits go through /api/apply.
func apiScanHandler(repoDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		opts, err := engineopts.ApplyWebQueryToOptions(engineopts.Defaults(repoDir), r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts.Write = false
		runAndRespond(w, r, opts)
	})
}

func apiApplyHandler(repoDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		opts, err := engineopts.ApplyWebQueryToOptions(engineopts.Defaults(repoDir), r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts.Write = true
		runAndRespond(w, r, opts)
	})
}

func runAndRespond(w http.ResponseWriter, r *http.Request, opts engine.Options) {
	if err := engineopts.NormalizeAndValidate(&opts); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	res, err := engine.Run(ctx, opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(res)
}

func mustAbs(p string) string {
	a, _ := filepath.Abs(p)
	return a
}
