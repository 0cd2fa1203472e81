package main

import (
	"github.com/joho/godotenv"

	"ragsum/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
