package handlers

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
)

//go:embed assets/index.html
var assets embed.FS

// index renders the viewer page for a single node.
type index struct {
	page []byte
}

func newIndex(build string, nodeURL string) (index, error) {
	u, err := url.Parse(nodeURL)
	if err != nil {
		return index{}, fmt.Errorf("parsing node url: %w", err)
	}
	if u.Host == "" {
		return index{}, fmt.Errorf("node url %q has no host", nodeURL)
	}

	events := *u
	events.Scheme = "ws"
	if u.Scheme == "https" {
		events.Scheme = "wss"
	}
	events.Path = "/events"

	chain := *u
	chain.Path = "/chain"

	tmpl, err := template.ParseFS(assets, "assets/index.html")
	if err != nil {
		return index{}, err
	}

	data := struct {
		Build     string
		Node      string
		ChainURL  string
		EventsURL string
	}{
		Build:     build,
		Node:      u.Host,
		ChainURL:  chain.String(),
		EventsURL: events.String(),
	}

	var b bytes.Buffer
	if err := tmpl.Execute(&b, data); err != nil {
		return index{}, err
	}

	return index{page: b.Bytes()}, nil
}

func (ig index) handler(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(ig.page); err != nil {
		return err
	}

	return nil
}
