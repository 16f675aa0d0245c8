package main

import "github.com/ingyamilmolinar/staffline/internal/cli"

func main() {
	cli.Execute()
}
