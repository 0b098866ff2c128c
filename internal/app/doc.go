// Package app wires configuration into a ready workflow executor. Both the
// stream worker and the command-line tool build their stack here.
package app
