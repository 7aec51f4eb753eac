// Package artifact produces the image attached to every bulletin.
//
// The grooming map is downloaded as a PDF and its first page is rendered to a
// PNG by a Rasterizer. Any failure here is fatal to a run because there is
// nothing to send without the image.
package artifact
