package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/wyvernlabs/nft-marketplace/api"
	"github.com/wyvernlabs/nft-marketplace/internal/config"
	"github.com/wyvernlabs/nft-marketplace/internal/market"
	"github.com/wyvernlabs/nft-marketplace/internal/market/query"
	"github.com/wyvernlabs/nft-marketplace/internal/market/store"
	"github.com/wyvernlabs/nft-marketplace/pkg/logger"
	"github.com/wyvernlabs/nft-marketplace/pkg/models"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger := logger.New(cfg.LogLevel)
	defer zapLogger.Sync()

	st, err := openStore(cfg.DataDir)
	if err != nil {
		zapLogger.Fatal("failed to open store", zap.Error(err))
	}
	defer st.Close()

	emitter := market.NewLogEmitter(zapLogger)
	svc := market.New(st, emitter, emitter, zapLogger)

	initialized, err := svc.Initialized()
	if err != nil {
		zapLogger.Fatal("failed to read marketplace state", zap.Error(err))
	}
	if !initialized {
		feeRate, err := cfg.Genesis.FeeRateDecimal()
		if err != nil {
			zapLogger.Fatal("invalid genesis fee rate", zap.Error(err))
		}
		genesis := models.Config{
			Admin:         cfg.Genesis.Admin,
			RegistryAddr:  cfg.Genesis.RegistryAddr,
			AllowedNative: cfg.Genesis.AllowedNative,
			AllowedAsset:  cfg.Genesis.AllowedAsset,
			FeeRate:       feeRate,
			CollectorAddr: cfg.Genesis.CollectorAddr,
		}
		if _, err := svc.Initialize(context.Background(), genesis); err != nil {
			zapLogger.Fatal("failed to initialize marketplace", zap.Error(err))
		}
	}

	server := api.NewServer(zapLogger, svc, query.New(st))
	if err := server.Run(cfg.ListenAddr); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}

func openStore(dataDir string) (store.Store, error) {
	if dataDir == ":memory:" {
		return store.NewMemory(), nil
	}
	return store.OpenBadger(dataDir)
}
