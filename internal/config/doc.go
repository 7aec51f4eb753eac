// Package config loads the ski-report runtime configuration.
//
// Values are layered: built-in defaults, then an optional YAML file (and its
// "<name>.local.yaml" sibling), then environment variables. The result is
// validated once and passed explicitly to every component.
package config
