// Command connector simulates a wallet-side link attempt against a running
// server: it fetches the backend's encryption key, builds a signed connect
// envelope with a fresh throwaway wallet, and posts it to the wallet-link
// callback with the given link token.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/mr-tron/base58"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/connector"
)

func main() {
	server := flag.String("server", "http://localhost:3000", "server base URL")
	token := flag.String("token", "", "link token from the /linkwallet command")
	userID := flag.String("user", "", "chat user id the token was issued for")
	flag.Parse()

	if *token == "" || *userID == "" {
		log.Fatal("both -token and -user are required")
	}

	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Get(*server + "/api/handshake-key")
	if err != nil {
		log.Fatalf("fetching handshake key: %v", err)
	}
	defer resp.Body.Close()

	var keyBody struct {
		EncryptionPublicKey string `json:"encryption_public_key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&keyBody); err != nil {
		log.Fatalf("decoding handshake key: %v", err)
	}
	serverKey, err := base58.Decode(keyBody.EncryptionPublicKey)
	if err != nil {
		log.Fatalf("decoding handshake key: %v", err)
	}

	wallet, err := connector.NewWallet()
	if err != nil {
		log.Fatalf("creating wallet: %v", err)
	}
	fmt.Printf("wallet address: %s\n", wallet.Address())

	c, err := connector.New(serverKey)
	if err != nil {
		log.Fatalf("starting connector: %v", err)
	}

	env, err := c.Connect(wallet, *userID, time.Now())
	if err != nil {
		log.Fatalf("building connect envelope: %v", err)
	}

	body, err := json.Marshal(map[string]any{"token": *token, "envelope": env})
	if err != nil {
		log.Fatalf("encoding request: %v", err)
	}

	cbResp, err := client.Post(*server+"/api/wallet-link-callback", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("posting callback: %v", err)
	}
	defer cbResp.Body.Close()

	out, _ := io.ReadAll(io.LimitReader(cbResp.Body, 1<<16))
	fmt.Printf("callback status: %s\nresponse: %s\n", cbResp.Status, out)
}
