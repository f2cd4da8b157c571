package main

import "github.com/vibast-solutions/ms-go-order-payments/cmd"

func main() {
	cmd.Execute()
}
