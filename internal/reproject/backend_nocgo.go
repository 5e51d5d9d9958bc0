//go:build !cgo

package reproject

// Without cgo the PROJ binding cannot be linked.
var backend = newNative
