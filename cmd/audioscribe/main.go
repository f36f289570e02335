package main

import (
	"github.com/joho/godotenv"

	"github.com/audioscribe/audioscribe/internal/cli"
)

func main() {
	_ = godotenv.Load()

	cli.Execute()
}
