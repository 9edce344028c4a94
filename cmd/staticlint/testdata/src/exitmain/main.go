package main

import (
	"os"
	sys "os"
)

func main() {
	defer func() {
		os.Exit(2) // замыкание не считается
	}()
	if len(os.Args) > 3 {
		sys.Exit(3) // want "direct call os.Exit is not allowed in main function"
	}
	os.Exit(1) // want "direct call os.Exit is not allowed in main function"
}

func helper() {
	os.Exit(1)
}
