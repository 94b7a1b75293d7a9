package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/importer"
	"storefront/internal/logging"
	"storefront/internal/platform"
	productrepo "storefront/internal/repository/product"
	productsvc "storefront/internal/service/product"

	"go.uber.org/zap"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to product CSV (id,productName,description,price,stockAvailable,imageUrl)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger, err := logging.New("importer")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	res := platform.NewResources(cfg, logger)
	defer res.Close()

	store, err := res.TableStore(ctx)
	if err != nil {
		logger.Fatal("open table store", zap.Error(err))
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.Error(err))
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, productsvc.New(productrepo.NewTable(store, logger)), logger)

	start := time.Now()
	result, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err), zap.Int("imported", result.Total()))
	}

	fmt.Printf("Imported %d products (%d new, %d updated) in %s\n",
		result.Total(), result.Created, result.Updated, time.Since(start).Truncate(time.Millisecond))
}
