package pubsite

import "embed"

// EmbeddedAssets contains the default stylesheet copied to <output>/assets/.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
