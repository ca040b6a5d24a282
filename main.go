package main

import "teraview/cmd"

func main() {
	cmd.Execute()
}
