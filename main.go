package main

import "github.com/DamirAinullin/ManagedEsent/cmd"

func main() {
	cmd.Execute()
}
