package main

import (
	"log"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
