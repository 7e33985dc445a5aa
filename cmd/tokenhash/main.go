// Команда tokenhash генерирует bcrypt-хеш API-токена для переменной
// окружения API_TOKEN_HASH.
//
// Использование:
//
//	tokenhash <token>
package main

import (
	"fmt"
	"os"

	"cryptoalpha/pkg/crypto"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: tokenhash <token>")
		os.Exit(2)
	}

	hash, err := crypto.HashToken(os.Args[1], crypto.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
