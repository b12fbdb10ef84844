// Command objstore is a small CLI for S3-compatible object stores.
package main

func main() {
	Execute()
}
