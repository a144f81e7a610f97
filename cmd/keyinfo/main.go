// Command keyinfo prints the application public key in the stripped form the
// gateway dashboard expects.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"vbank-adapter/internal/config"
	"vbank-adapter/internal/keystore"
	"vbank-adapter/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	path := flag.String("key", "", "public key path (defaults to VBANK_PUBLIC_KEY_PATH)")
	flag.Parse()

	if err := run(os.Stdout, cfg, *path); err != nil {
		logger.L().Error("cannot load public key", zap.Error(err))
		os.Exit(1)
	}
}

func run(w io.Writer, cfg *config.Config, path string) error {
	store := keystore.New(keystore.Paths{
		Private:    cfg.PrivateKeyPath,
		Public:     cfg.PublicKeyPath,
		GatewayKey: cfg.GatewayPublicKey,
	})

	key, err := store.LoadPublicKeyForUpload(path)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(key))
	return err
}
