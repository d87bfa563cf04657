// genhash prints a salt and password hash pair for seeding an account by hand.
//
//	go run scripts/genhash.go -password 'secret'
//
// Without -password a random password is generated.
package main

import (
	"flag"
	"fmt"
	"os"

	"go-headhunter-backend/pkg/credential"
)

func main() {
	password := flag.String("password", "", "plaintext password (random when empty)")
	flag.Parse()

	creds, err := credential.NewGenerator().Generate()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if *password == "" {
		*password = creds.Password
	}

	hash := credential.NewHasher().Hash(*password, creds.Salt)
	fmt.Printf("Password: %s\nSalt: %s\nHash: %s\n", *password, creds.Salt, hash)
}
