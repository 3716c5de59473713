package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/solstrike/chipgate/internal/treasury"
)

// inspector prints the derived custody addresses a deployment will use, and
// optionally dumps the live price table from a running gateway.
func main() {
	gateway := flag.String("gateway", "", "base URL of a running gateway, e.g. http://localhost:8080")
	flag.Parse()

	fmt.Println("--- Derived Addresses ---")
	vault := treasury.New()
	fmt.Printf("Treasury:  %s (bump %d)\n", vault.Address().Hex(), vault.Bump())
	mint := vault.MintAuthority()
	fmt.Printf("Chip Mint: %s (bump %d)\n", mint.Address().Hex(), mint.Bump())

	cfgAddr, cfgBump := treasury.Derive(treasury.SeedPriceConfig)
	fmt.Printf("Price Config: %s (bump %d)\n", cfgAddr.Hex(), cfgBump)

	for _, assetID := range flag.Args() {
		addr, bump := vault.AssetAccount(assetID)
		fmt.Printf("Asset %-12s %s (bump %d)\n", assetID+":", addr.Hex(), bump)
	}

	if *gateway == "" {
		return
	}

	fmt.Println("\n--- Live Price Table ---")
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*gateway + "/v1/prices")
	if err != nil {
		fmt.Fprintf(os.Stderr, "gateway unreachable: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var table map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		fmt.Fprintf(os.Stderr, "bad response: %v\n", err)
		os.Exit(1)
	}
	pretty, _ := json.MarshalIndent(table, "", "  ")
	fmt.Println(string(pretty))
}
