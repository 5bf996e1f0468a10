package main

import "github.com/theirongolddev/mealradar/cmd"

func main() {
	cmd.Execute()
}
