// The register-discount binary registers the automatic app discount backed
// by the deployed discount function. It is a one-shot setup step; the
// settings form also retries registration best-effort on every save.
package main

import (
	"context"
	"log"
	"os"

	"freegift/internal/config"
	rulesvc "freegift/internal/service/rule"
	"freegift/internal/shopify"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[register-discount] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	client := shopify.NewAdmin(cfg.Shopify, nil)

	if err := client.RegisterAutomaticDiscount(context.Background(), rulesvc.DiscountTitle); err != nil {
		logger.Fatalf("register automatic discount: %v", err)
	}

	logger.Printf("automatic discount %q registered", rulesvc.DiscountTitle)
}
