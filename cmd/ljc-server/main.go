package main

import "github.com/snowcode-jp/ljc-server/cmd/ljc-server/cmd"

func main() {
	cmd.Execute()
}
