package main

import "github.com/Rorical/RoriReview/cmd"

func main() {
	cmd.Execute()
}
