// Package file provides file-based implementations of the configuration
// and prompt store ports. Settings live in a TOML file and prompts in
// user-editable text files under the kbridge config directory.
package file
