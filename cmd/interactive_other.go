//go:build !windows

package main

// enableVT is only needed on the Windows console.
func enableVT() {}
