package site

import "embed"

// EmbeddedAssets contains the static assets served by the dev server:
// reload.js, the live-reload client.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
