package main

import "insurancecost/cli"

func main() {
	cli.Execute()
}
