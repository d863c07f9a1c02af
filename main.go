package main

import "github.com/alxjhc/sf-airbnb/cmd"

func main() {
	cmd.Execute()
}
