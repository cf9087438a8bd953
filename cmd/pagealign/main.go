package main

import "github.com/MeKo-Tech/pagealign/cmd/pagealign/cmd"

func main() {
	cmd.Execute()
}
