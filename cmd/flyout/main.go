// Package main is the entry point for the flyout server.
package main

func main() {
	Execute()
}
