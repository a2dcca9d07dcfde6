package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/legadoapp/legado/internal/app"
)

func main() {
	// .envはローカル開発用。本番では環境変数を直接設定するため、存在しなくてもよい。
	_ = godotenv.Load()

	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
