package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"backoffice/internal/usecase"
)

func main() {
	//.envは任意
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", errorMessage(err))
		os.Exit(1)
	}
}

// HTTPErrorはステータスを付けずに出す
func errorMessage(err error) string {
	if he, ok := usecase.AsHTTPError(err); ok {
		return he.Message
	}
	return err.Error()
}
