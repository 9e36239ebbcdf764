package main

import "github.com/pders01/menu-inflation/cmd"

func main() {
	cmd.Execute()
}
