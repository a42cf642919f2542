package main

import "ngp/cmd/ngp/root"

func main() {
	root.Execute()
}
