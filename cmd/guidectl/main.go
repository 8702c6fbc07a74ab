// Package main provides guidectl, a command-line tool for bulk work on a
// guide server's data directory.
package main

func main() {
	Execute()
}
