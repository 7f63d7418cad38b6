package main

import "github.com/ellavondegurechaff/gohye-trades/cmd"

func main() {
	cmd.Execute()
}
