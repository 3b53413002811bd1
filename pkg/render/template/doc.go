// Package template defines the template engine seam output renderers use, so
// the vanilla renderer can swap engines or template bundles.
package template
