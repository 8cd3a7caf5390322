package main

import (
	"encoding/base64"
	"fmt"

	"contestatii/internal/utils"

	"github.com/gorilla/securecookie"
	"github.com/urfave/cli/v2"
)

var keygenCommand = &cli.Command{
	Name:  "keygen",
	Usage: "Print fresh cookie keys and a token secret as environment variables",
	Action: func(c *cli.Context) error {
		secret, err := utils.Token(48)
		if err != nil {
			return err
		}

		fmt.Printf("COOKIE_HASH_KEY=%s\n", base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(64)))
		fmt.Printf("COOKIE_BLOCK_KEY=%s\n", base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)))
		fmt.Printf("TOKEN_SECRET=%s\n", secret)
		return nil
	},
}
